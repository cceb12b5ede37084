package model

// Action is the kind of input a session is currently waiting for.
type Action int

const (
	ActionIdle Action = iota
	ActionAwaitingPhone
	ActionAwaitingOTP
	ActionAwaitingButton
	ActionAwaitingText
	ActionAwaitingTemplate
	ActionAwaitingPhoto
	ActionAwaitingLocation
	ActionAwaitingCorrection
	// ActionPending marks a session whose remote call is still in flight.
	ActionPending
)

var actionNames = map[Action]string{
	ActionIdle:               "idle",
	ActionAwaitingPhone:      "awaiting_phone",
	ActionAwaitingOTP:        "awaiting_otp",
	ActionAwaitingButton:     "awaiting_button",
	ActionAwaitingText:       "awaiting_text",
	ActionAwaitingTemplate:   "awaiting_template",
	ActionAwaitingPhoto:      "awaiting_photo",
	ActionAwaitingLocation:   "awaiting_location",
	ActionAwaitingCorrection: "awaiting_correction",
	ActionPending:            "pending",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "unknown"
}

// Correction holds the narrow text-correction path offered after a photo
// extraction that failed validation on a few fields.
type Correction struct {
	// Keys are the lower-cased extraction keys the user may send.
	Keys []string
}

// Submission is the payload built on the first confirm. A retry after a failed
// submission resends it unchanged.
type Submission struct {
	Single *SinglePayload
	Group  *GroupPayload
}

// Session is the per-user conversation state.
type Session struct {
	UserID           int64
	Action           Action
	OrderType        OrderType
	History          []Step
	Order            *Order
	CurrentDropIndex int
	AvailableSlots   []TimeSlot
	Correction       *Correction
	Submission       *Submission
	// Quoted is set once the order on the confirmation step has been priced.
	Quoted bool

	// Phone is the number being logged in while Action is awaiting_otp.
	Phone string
}

// NewSession returns an empty session for userID.
func NewSession(userID int64) *Session {
	return &Session{UserID: userID, Action: ActionIdle}
}

// Step returns the step on top of the history.
func (s *Session) Step() (Step, bool) {
	if len(s.History) == 0 {
		return Step{}, false
	}
	return s.History[len(s.History)-1], true
}

// InFlow reports whether the session is inside an order flow.
func (s *Session) InFlow() bool {
	return s.Order != nil && len(s.History) > 0
}
