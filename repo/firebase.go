package repo

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"CourierBot/model"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// FirebaseConnector keeps accounts and submitted orders in the Firebase
// realtime database under users/<id> and orders/<id>.
type FirebaseConnector struct {
	client *db.Client
}

// NewFirebaseConnector connects to the realtime database at databaseURL using
// the service account key file.
func NewFirebaseConnector(ctx context.Context, serviceAccountKeyPath string, databaseURL string) (*FirebaseConnector, error) {
	opt := option.WithCredentialsFile(serviceAccountKeyPath)

	config := &firebase.Config{
		DatabaseURL: databaseURL,
	}
	app, err := firebase.NewApp(ctx, config, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting database client: %w", err)
	}

	return &FirebaseConnector{client: client}, nil
}

func userKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// Account reads the stored credential of userID. A user that never logged in
// yields an empty account.
func (fc *FirebaseConnector) Account(ctx context.Context, userID int64) (model.Account, error) {
	var acc model.Account
	if err := fc.client.NewRef("users").Child(userKey(userID)).Get(ctx, &acc); err != nil {
		return model.Account{}, fmt.Errorf("error reading account: %w", err)
	}
	return acc, nil
}

func (fc *FirebaseConnector) SaveAccount(ctx context.Context, userID int64, acc model.Account) error {
	if err := fc.client.NewRef("users").Child(userKey(userID)).Set(ctx, acc); err != nil {
		return fmt.Errorf("error saving account: %w", err)
	}
	return nil
}

func (fc *FirebaseConnector) DeleteAccount(ctx context.Context, userID int64) error {
	if err := fc.client.NewRef("users").Child(userKey(userID)).Delete(ctx); err != nil {
		return fmt.Errorf("error deleting account: %w", err)
	}
	return nil
}

// SaveOrder appends a submitted order to the user's order list and returns the
// generated order id.
func (fc *FirebaseConnector) SaveOrder(ctx context.Context, userID int64, order any) (string, error) {
	stored := model.StoredOrder{OrderID: uuid.NewString(), Order: order}
	if _, err := fc.client.NewRef("orders").Child(userKey(userID)).Push(ctx, stored); err != nil {
		return "", fmt.Errorf("error saving order: %w", err)
	}
	return stored.OrderID, nil
}

// Orders lists the stored orders of userID, oldest first. Push keys sort in
// creation order.
func (fc *FirebaseConnector) Orders(ctx context.Context, userID int64) ([]model.StoredOrder, error) {
	var byKey map[string]model.StoredOrder
	if err := fc.client.NewRef("orders").Child(userKey(userID)).Get(ctx, &byKey); err != nil {
		return nil, fmt.Errorf("error listing orders: %w", err)
	}
	orders := make([]model.StoredOrder, 0, len(byKey))
	for _, key := range slices.Sorted(maps.Keys(byKey)) {
		orders = append(orders, byKey[key])
	}
	return orders, nil
}
