package service

import (
	"context"
	"testing"

	"github.com/UP220404/cielito-home-compras/internal/apierror"
	"github.com/UP220404/cielito-home-compras/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminActor() Actor {
	return Actor{ID: uuid.New(), Role: model.RoleAdmin, Area: "Sistemas"}
}

func TestUserCreateAndLogin(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewUserService(repo, []byte("clave-de-pruebas"))
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, adminActor(), CreateUserRequest{
		Username: "mgarcia",
		Email:    "mgarcia@cielitohome.com",
		Password: "secreto123",
		Role:     model.RoleComprador,
		Area:     "Compras",
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	session, err := svc.Login(ctx, LoginUserRequest{Email: "mgarcia@cielitohome.com", Password: "secreto123"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, model.RoleComprador, session.User.Role)
}

func TestUserLoginWrongPassword(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewUserService(repo, []byte("clave-de-pruebas"))
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, adminActor(), CreateUserRequest{
		Username: "mgarcia",
		Email:    "mgarcia@cielitohome.com",
		Password: "secreto123",
		Role:     model.RoleComprador,
		Area:     "Compras",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginUserRequest{Email: "mgarcia@cielitohome.com", Password: "otracosa"})
	assert.ErrorIs(t, err, apierror.ErrAuthorization)

	_, err = svc.Login(ctx, LoginUserRequest{Email: "nadie@cielitohome.com", Password: "secreto123"})
	assert.ErrorIs(t, err, apierror.ErrAuthorization)
}

func TestUserLoginDeactivatedAccount(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewUserService(repo, []byte("clave-de-pruebas"))
	ctx := context.Background()
	admin := adminActor()

	created, err := svc.CreateUser(ctx, admin, CreateUserRequest{
		Username: "jlopez",
		Email:    "jlopez@cielitohome.com",
		Password: "secreto123",
		Role:     model.RoleSolicitante,
		Area:     "Cocina",
	})
	require.NoError(t, err)

	inactive := false
	_, err = svc.UpdateUser(ctx, admin, created.ID.String(), UpdateUserRequest{IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginUserRequest{Email: "jlopez@cielitohome.com", Password: "secreto123"})
	assert.ErrorIs(t, err, apierror.ErrAuthorization)
}

func TestUserCreateRequiresAdmin(t *testing.T) {
	svc := NewUserService(newMemUserRepo(), []byte("clave-de-pruebas"))
	director := Actor{ID: uuid.New(), Role: model.RoleDirector, Area: "Dirección"}

	_, err := svc.CreateUser(context.Background(), director, CreateUserRequest{
		Username: "alguien",
		Email:    "alguien@cielitohome.com",
		Password: "secreto123",
		Role:     model.RoleSolicitante,
		Area:     "Cocina",
	})
	assert.ErrorIs(t, err, apierror.ErrAuthorization)
}

func TestUserCreateDuplicates(t *testing.T) {
	svc := NewUserService(newMemUserRepo(), []byte("clave-de-pruebas"))
	ctx := context.Background()
	admin := adminActor()
	req := CreateUserRequest{
		Username: "mgarcia",
		Email:    "mgarcia@cielitohome.com",
		Password: "secreto123",
		Role:     model.RoleComprador,
		Area:     "Compras",
	}

	_, err := svc.CreateUser(ctx, admin, req)
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, admin, req)
	assert.ErrorIs(t, err, apierror.ErrConflict)

	req.Username = "mgarcia2"
	_, err = svc.CreateUser(ctx, admin, req)
	assert.ErrorIs(t, err, apierror.ErrConflict)
}

func TestUserCreateValidation(t *testing.T) {
	svc := NewUserService(newMemUserRepo(), []byte("clave-de-pruebas"))
	ctx := context.Background()
	admin := adminActor()

	_, err := svc.CreateUser(ctx, admin, CreateUserRequest{
		Username: "x", Email: "x@cielitohome.com", Password: "secreto123", Role: "gerente", Area: "Cocina",
	})
	assert.ErrorIs(t, err, apierror.ErrValidation)

	_, err = svc.CreateUser(ctx, admin, CreateUserRequest{
		Username: "x", Email: "no-es-correo", Password: "secreto123", Role: model.RoleSolicitante, Area: "Cocina",
	})
	assert.ErrorIs(t, err, apierror.ErrValidation)
}
