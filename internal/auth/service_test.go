package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/angelmondragon/aquaflow-backend/pkg/errors"
)

func TestEveryCallIsNotAvailable(t *testing.T) {
	svc := NewUnavailable()
	ctx := context.Background()

	_, err := svc.SignIn(ctx, Credentials{Email: "a@example.com"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotAvailable))
	_, err = svc.SignUp(ctx, Credentials{Email: "a@example.com"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotAvailable))
	assert.True(t, pkgerrors.IsCode(svc.SignOut(ctx), pkgerrors.CodeNotAvailable))
	_, err = svc.CurrentUser(ctx)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotAvailable))
}
