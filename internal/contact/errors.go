package contact

import "net/http"

// User-facing messages of the contact endpoint.
const (
	MsgMethodNotAllowed = "Método no permitido"
	MsgRequired         = "Todos los campos son obligatorios"
	MsgInvalidEmail     = "Email inválido"
	MsgTooManyRequests  = "Demasiadas solicitudes, intenta más tarde"
	MsgSecurityFailed   = "Verificación de seguridad fallida"
	MsgProcessing       = "Error al procesar la solicitud"
	MsgSaveFailed       = "Error al guardar el mensaje"
	MsgThanks           = "¡Gracias por contactarnos! Te responderemos pronto."
)

// Error is a rejected submission. Status is the HTTP status to answer with.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func badRequest(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

func internal(msg string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: msg, Err: err}
}
