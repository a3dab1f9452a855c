package alerter

// GenericAlertPayload алерт в свободной форме от внешнего мониторинга
type GenericAlertPayload struct {
	Message string `json:"message" binding:"required"`
	Source  string `json:"source"`
}
