package firebase

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
)

var firebaseAuthClient *auth.Client

// InitFirebaseSdk uses application default credentials.
func InitFirebaseSdk(ctx context.Context) error {
	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		return err
	}
	firebaseAuthClient, err = app.Auth(ctx)
	return err
}

func VerifyIdToken(ctx context.Context, idToken string) (*auth.Token, error) {
	return firebaseAuthClient.VerifyIDToken(ctx, idToken)
}
