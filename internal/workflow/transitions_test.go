package workflow

import (
	"testing"

	"github.com/UP220404/cielito-home-compras/internal/apierror"
	"github.com/UP220404/cielito-home-compras/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeForwardTransitions(t *testing.T) {
	cases := []struct {
		name    string
		current string
		next    string
		role    string
		isOwner bool
		wantErr error
	}{
		{"director authorizes pending", model.StatusPendiente, model.StatusAutorizada, model.RoleDirector, false, nil},
		{"director authorizes quoting", model.StatusCotizando, model.StatusAutorizada, model.RoleDirector, false, nil},
		{"director rejects pending", model.StatusPendiente, model.StatusRechazada, model.RoleDirector, false, nil},
		{"admin authorizes", model.StatusCotizando, model.StatusAutorizada, model.RoleAdmin, false, nil},
		{"requester cannot authorize own request", model.StatusPendiente, model.StatusAutorizada, model.RoleSolicitante, true, apierror.ErrAuthorization},
		{"purchaser cannot authorize", model.StatusCotizando, model.StatusAutorizada, model.RoleComprador, false, apierror.ErrAuthorization},
		{"purchaser moves to quoting", model.StatusPendiente, model.StatusCotizando, model.RoleComprador, false, nil},
		{"requester cannot move to quoting", model.StatusPendiente, model.StatusCotizando, model.RoleSolicitante, true, apierror.ErrAuthorization},
		{"purchaser marks purchased", model.StatusAutorizada, model.StatusComprada, model.RoleComprador, false, nil},
		{"purchaser marks delivered", model.StatusComprada, model.StatusEntregada, model.RoleComprador, false, nil},
		{"owner submits draft", model.StatusBorrador, model.StatusPendiente, model.RoleSolicitante, true, nil},
		{"non-owner cannot submit draft", model.StatusBorrador, model.StatusPendiente, model.RoleSolicitante, false, apierror.ErrAuthorization},
		{"admin submits someone's draft", model.StatusBorrador, model.StatusPendiente, model.RoleAdmin, false, nil},
		{"scheduled becomes pending", model.StatusProgramada, model.StatusPendiente, model.RoleSolicitante, true, nil},
		{"cannot skip to purchased", model.StatusPendiente, model.StatusComprada, model.RoleComprador, false, apierror.ErrPrecondition},
		{"cannot go backward", model.StatusAutorizada, model.StatusPendiente, model.RoleAdmin, false, apierror.ErrPrecondition},
		{"delivered is terminal", model.StatusEntregada, model.StatusComprada, model.RoleAdmin, false, apierror.ErrPrecondition},
		{"rejected is terminal", model.StatusRechazada, model.StatusAutorizada, model.RoleDirector, false, apierror.ErrPrecondition},
		{"unknown target status", model.StatusPendiente, "pagada", model.RoleAdmin, false, apierror.ErrValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.current, tc.next, tc.role, tc.isOwner)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestAuthorizeCancel(t *testing.T) {
	// Owner may cancel only while pendiente
	assert.NoError(t, Authorize(model.StatusPendiente, model.StatusCancelada, model.RoleSolicitante, true))
	assert.ErrorIs(t, Authorize(model.StatusCotizando, model.StatusCancelada, model.RoleSolicitante, true), apierror.ErrPrecondition)
	assert.ErrorIs(t, Authorize(model.StatusAutorizada, model.StatusCancelada, model.RoleSolicitante, true), apierror.ErrPrecondition)

	// Non-owner non-admin never cancels
	assert.ErrorIs(t, Authorize(model.StatusPendiente, model.StatusCancelada, model.RoleComprador, false), apierror.ErrAuthorization)

	// Admin cancels any non-terminal state
	assert.NoError(t, Authorize(model.StatusCotizando, model.StatusCancelada, model.RoleAdmin, false))
	assert.NoError(t, Authorize(model.StatusComprada, model.StatusCancelada, model.RoleAdmin, false))
	assert.ErrorIs(t, Authorize(model.StatusCancelada, model.StatusCancelada, model.RoleAdmin, false), apierror.ErrPrecondition)
	assert.ErrorIs(t, Authorize(model.StatusEntregada, model.StatusCancelada, model.RoleAdmin, false), apierror.ErrPrecondition)
}

func TestAuthorizePreconditionCarriesCurrentStatus(t *testing.T) {
	err := Authorize(model.StatusAutorizada, model.StatusPendiente, model.RoleAdmin, false)
	require.Error(t, err)

	var e *apierror.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, model.StatusAutorizada, e.CurrentStatus)
}

func TestCanDelete(t *testing.T) {
	assert.NoError(t, CanDelete(model.StatusEntregada, model.RoleAdmin, false))
	assert.NoError(t, CanDelete(model.StatusPendiente, model.RoleSolicitante, true))
	assert.ErrorIs(t, CanDelete(model.StatusCotizando, model.RoleSolicitante, true), apierror.ErrPrecondition)
	assert.ErrorIs(t, CanDelete(model.StatusPendiente, model.RoleComprador, false), apierror.ErrAuthorization)
}

func TestNextStates(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{model.StatusCotizando, model.StatusAutorizada, model.StatusRechazada, model.StatusCancelada},
		NextStates(model.StatusPendiente))
	assert.ElementsMatch(t,
		[]string{model.StatusComprada, model.StatusCancelada},
		NextStates(model.StatusAutorizada))
	assert.Nil(t, NextStates(model.StatusEntregada))
	assert.Nil(t, NextStates(model.StatusCancelada))
}
