// Package workflow implements the request status state machine as a pure rule
// table, independent of persistence. Services consult Authorize before any
// status mutation; the same rules are never re-implemented at the UI layer.
package workflow

import (
	"github.com/UP220404/cielito-home-compras/internal/apierror"
	"github.com/UP220404/cielito-home-compras/internal/model"
)

// transitions is the legal forward graph. Cancellation is handled separately
// because it is reachable from every non-terminal state.
var transitions = map[string][]string{
	model.StatusBorrador:   {model.StatusProgramada, model.StatusPendiente},
	model.StatusProgramada: {model.StatusPendiente},
	model.StatusPendiente:  {model.StatusCotizando, model.StatusAutorizada, model.StatusRechazada},
	model.StatusCotizando:  {model.StatusAutorizada, model.StatusRechazada},
	model.StatusAutorizada: {model.StatusComprada},
	model.StatusComprada:   {model.StatusEntregada},
}

// reachable reports whether next is a legal forward step from current.
func reachable(current, next string) bool {
	for _, s := range transitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

// Authorize decides whether an actor with the given role may move a request
// from current to next. isOwner is true when the actor owns the request.
// A nil return means the transition is allowed.
func Authorize(current, next, role string, isOwner bool) error {
	if !model.ValidStatus(next) {
		return apierror.Validation("estado desconocido: %q", next)
	}
	if !model.ValidStatus(current) {
		return apierror.Validation("estado desconocido: %q", current)
	}

	if next == model.StatusCancelada {
		return authorizeCancel(current, role, isOwner)
	}

	if model.TerminalStatus(current) {
		return apierror.Precondition(current, "la solicitud está en estado terminal %q", current)
	}
	if !reachable(current, next) {
		return apierror.Precondition(current, "transición no permitida: %s → %s", current, next)
	}

	switch next {
	case model.StatusAutorizada, model.StatusRechazada:
		if role != model.RoleDirector && role != model.RoleAdmin {
			return apierror.Authorization("solo un director o administrador puede %s una solicitud", verb(next))
		}
	case model.StatusCotizando, model.StatusComprada, model.StatusEntregada:
		if role != model.RoleComprador && role != model.RoleAdmin {
			return apierror.Authorization("solo compras puede mover una solicitud a %q", next)
		}
	case model.StatusPendiente, model.StatusProgramada:
		// Draft submission and scheduling stay with the owner (or admin).
		if !isOwner && role != model.RoleAdmin {
			return apierror.Authorization("solo el solicitante puede enviar su propia solicitud")
		}
	}

	return nil
}

func authorizeCancel(current, role string, isOwner bool) error {
	if model.TerminalStatus(current) {
		return apierror.Precondition(current, "la solicitud ya está en estado terminal %q", current)
	}
	if role == model.RoleAdmin {
		return nil
	}
	if isOwner && current == model.StatusPendiente {
		return nil
	}
	if isOwner {
		return apierror.Precondition(current, "solo se puede cancelar una solicitud propia mientras está pendiente")
	}
	return apierror.Authorization("no tiene permiso para cancelar esta solicitud")
}

// CanDelete reports whether the actor may delete a request outright.
// Admins always may; the owner only while the request is still pendiente.
func CanDelete(status, role string, isOwner bool) error {
	if role == model.RoleAdmin {
		return nil
	}
	if isOwner && status == model.StatusPendiente {
		return nil
	}
	if isOwner {
		return apierror.Precondition(status, "solo se puede eliminar una solicitud propia mientras está pendiente")
	}
	return apierror.Authorization("no tiene permiso para eliminar esta solicitud")
}

// NextStates returns the statuses reachable from current, cancellation
// included, for UI affordances. Role gating still applies on the actual call.
func NextStates(current string) []string {
	if model.TerminalStatus(current) {
		return nil
	}
	out := append([]string{}, transitions[current]...)
	return append(out, model.StatusCancelada)
}

func verb(status string) string {
	if status == model.StatusAutorizada {
		return "autorizar"
	}
	return "rechazar"
}
