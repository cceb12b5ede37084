package handler

import (
	"context"
	"errors"
	"fmt"

	"CourierBot/intake"
	"CourierBot/model"
	"CourierBot/transport"

	"github.com/rs/zerolog/log"
)

const singleTemplate = `*Step 1: Provide Text Details*
Please copy this template, fill in the details, and send it back. Location and other options will be asked next with buttons.

Pickup Details
Sender Name:
Sender Phone:
Full Address:
Building No:
Floor:
Unit:
Postal Code (optional):
Note (optional):
---
Drop-off Details
Recipient Name:
Recipient Phone:
Full Address:
Building No:
Floor:
Unit:
Postal Code (optional):
Note (optional):
---
Parcel Details
Weight (grams):
Value (optional):`

// startSingle opens a single order in the chosen input mode.
func (h *Handler) startSingle(t *turn, mode string) {
	var first model.Step
	switch mode {
	case cbModeStepwise:
		first = intake.FirstStep(model.OrderTypeSingle)
	case cbModeTemplate:
		first = model.StepOf(model.FamilySingleTemplate)
	case cbModePicture:
		if !h.visionEnabled() {
			h.fail(t, model.ErrVisionDisabled)
			return
		}
		first = model.StepOf(model.FamilySingleVision)
	}
	intake.Start(t.sess, model.OrderTypeSingle, first)
	log.Info().Int64("user", t.ev.UserID).Str("mode", mode).Msg("single order started")
	h.show(t, first)
}

func (h *Handler) askSingleTemplate(t *turn, _ model.Step) {
	h.send(t, transport.Message{Text: singleTemplate, Markdown: true, Keyboard: inline([]transport.Button{cancelButton})})
}

func (h *Handler) askSinglePicture(t *turn, _ model.Step) {
	h.say(t, "Please send a picture containing all the order details (pickup, drop-off, and parcel information).",
		inline([]transport.Button{cancelButton}))
}

// answer applies a typed answer to the current step.
func (h *Handler) answer(t *turn, text string) {
	top, _ := t.sess.Step()
	next, err := intake.Answer(t.sess, top, text)
	if err != nil {
		h.fail(t, err)
		return
	}
	h.show(t, next)
}

// template applies a filled template to the current input step.
func (h *Handler) template(t *turn, text string) {
	top, _ := t.sess.Step()
	var (
		next model.Step
		err  error
	)
	switch top.Family {
	case model.FamilySingleTemplate:
		next, err = intake.ApplySingleTemplate(t.sess, text)
	case model.FamilyGroupPickupInput:
		next, err = intake.ApplyGroupPickupTemplate(t.sess, text)
	case model.FamilyDropoffInput:
		next, err = intake.ApplyDropoffTemplate(t.sess, top.Index, text)
	default:
		h.fail(t, &model.StateError{Action: t.sess.Action, Reason: "no template expected at " + top.String()})
		return
	}
	if err != nil {
		h.templateFailed(t, err)
		return
	}
	h.show(t, next)
}

func (h *Handler) templateFailed(t *turn, err error) {
	var (
		verr *model.ValidationError
		perr *model.ParseError
	)
	var lines []string
	switch {
	case errors.As(err, &verr):
		lines = verr.Lines()
	case errors.As(err, &perr):
		lines = []string{perr.Reason}
	default:
		h.fail(t, err)
		return
	}
	kb := inline([]transport.Button{cancelButton})
	if row := navRow(t.sess); row != nil {
		kb = inline(row, []transport.Button{cancelButton})
	}
	h.say(t, "There were errors with your submission:\n- "+joinLines(lines)+"\nPlease correct the template and send it again.", kb)
}

// schemaFor returns the extraction schema of an input step.
func schemaFor(f model.Family) (intake.Schema, bool) {
	switch f {
	case model.FamilySingleVision:
		return intake.SingleSchema, true
	case model.FamilyGroupPickupInput:
		return intake.GroupPickupSchema, true
	case model.FamilyDropoffInput:
		return intake.DropoffSchema, true
	}
	return intake.Schema{}, false
}

// extract reads the order details of the current input step from a photo.
func (h *Handler) extract(t *turn, top model.Step) {
	if !h.visionEnabled() {
		h.fail(t, model.ErrVisionDisabled)
		return
	}
	schema, ok := schemaFor(top.Family)
	if !ok {
		h.fail(t, &model.StateError{Action: t.sess.Action, Reason: "no picture expected at " + top.String()})
		return
	}
	h.say(t, "Analyzing image... This may take a moment. 🧠", nil)

	fileID := t.ev.FileID
	var data map[string]string
	ok, err := h.await(t, func(ctx context.Context) error {
		image, err := h.images.Download(ctx, fileID)
		if err != nil {
			return err
		}
		data, err = h.extractor.Extract(ctx, image, schema.Prompt)
		return err
	})
	if !ok {
		return
	}
	if err != nil {
		log.Error().Err(err).Int64("user", t.ev.UserID).Str("schema", schema.Name).Msg("extraction failed")
		h.say(t, "❌ I encountered an error trying to read the image: "+readFailure(err)+". Please try another picture or enter the details manually.",
			inline([]transport.Button{{Text: "Enter Details Manually", Data: cbManual}}))
		return
	}

	next, err := schema.ApplyExtraction(t.sess, top.Index, data)
	if err != nil {
		h.visionFailed(t, schema, top, err, "I read the image, but some information is missing or invalid:")
		return
	}
	h.say(t, "✅ I've successfully extracted and validated the order details from your picture!", nil)
	h.show(t, next)
}

// correct patches the fields of a failed extraction from "key: value" lines.
func (h *Handler) correct(t *turn, text string) {
	top, _ := t.sess.Step()
	schema, ok := schemaFor(top.Family)
	if !ok {
		h.fail(t, &model.StateError{Action: t.sess.Action, Reason: "no correction expected at " + top.String()})
		return
	}
	next, err := schema.ApplyCorrection(t.sess, top.Index, text)
	if err != nil {
		var perr *model.ParseError
		if errors.As(err, &perr) {
			h.say(t, perr.Reason+"\nYou can use: "+joinComma(t.sess.Correction.Keys), nil)
			return
		}
		h.visionFailed(t, schema, top, err, "Thanks for the correction, but I still see some issues:")
		return
	}
	h.say(t, "✅ Great, all details are now correct!", nil)
	h.show(t, next)
}

// visionFailed reports the validation errors of extracted details and offers a
// text correction when the policy allows it.
func (h *Handler) visionFailed(t *turn, schema intake.Schema, top model.Step, err error, intro string) {
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		h.fail(t, err)
		return
	}
	text := intro + "\n- " + joinLines(verr.Lines()) + "\n\n"
	if schema.Offer(t.sess, top.Index, err, h.vision) {
		t.sess.Action = model.ActionAwaitingCorrection
		text += fmt.Sprintf("You can reply with the corrected information in a message (e.g., '%s: ...'), or send a new picture.", t.sess.Correction.Keys[0])
		h.say(t, text, nil)
		return
	}
	t.sess.Action = model.ActionAwaitingPhoto
	h.say(t, text+"Please upload a clearer picture or enter the details manually.", inline(
		[]transport.Button{{Text: "Upload New Picture", Data: cbNewPicture}},
		[]transport.Button{{Text: "Enter Details Manually", Data: cbManual}},
	))
}

func readFailure(err error) string {
	var (
		perr *model.ParseError
		ext  *model.ExternalServiceError
	)
	switch {
	case errors.As(err, &perr):
		return perr.Reason
	case errors.As(err, &ext):
		return ext.Message
	}
	return "the picture could not be processed"
}

// manual leaves picture import for typed input.
func (h *Handler) manual(t *turn) {
	top, _ := t.sess.Step()
	t.sess.Correction = nil
	if top.Family == model.FamilySingleVision {
		first := intake.FirstStep(model.OrderTypeSingle)
		intake.Start(t.sess, model.OrderTypeSingle, first)
		h.show(t, first)
		return
	}
	// group input steps take a template as well as a picture
	h.show(t, top)
}
