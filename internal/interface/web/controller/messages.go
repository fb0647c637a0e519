package controller

// Texts shown in the message area of the page.
const (
	MsgStudentNameRequired = "Por favor, ingresa el nombre del estudiante."
	MsgGradeOutOfRange     = "Las calificaciones deben estar entre 0 y 10."
	MsgServerErrorPrefix   = "Error desde el servidor: "
	MsgCalculationDone     = "Cálculos realizados correctamente."
	MsgTransportError      = "Ocurrió un error al comunicarse con el servidor."
	MsgSubmissionInFlight  = "Ya hay un cálculo en curso, espera la respuesta."
)

// CSS classes toggled by the controller.
const (
	ClassOpen    = "open"
	ClassInvalid = "invalid"
	ClassError   = "error"
	ClassSuccess = "success"
)

// FilterAll shows every row of the results table.
const FilterAll = "all"
