package texts

// Общие
const (
	Welcome = "🎟️ ¡Bienvenido a la rifa!\n\nElige una opción del menú."

	WelcomeBack = "🎟️ ¡Hola de nuevo, %s!\n\nElige una opción del menú."

	Help = "Comandos disponibles:\n" +
		"/start - menú principal\n" +
		"/rifas - ver rifas activas\n" +
		"/misboletas - ver mis números y pagos\n" +
		"/cancelar - cancelar la operación actual"

	UnknownCommand = "No conozco el comando %s.\n\n" + Help

	Cancelled = "Operación cancelada."

	InternalError = "⚠️ Ocurrió un error. Intenta de nuevo en unos minutos."

	NotAdmin = "Esta acción es solo para administradores."
)

// Кнопки
const (
	ButtonRaffles    = "🎟️ Ver rifas"
	ButtonMyTickets  = "📋 Mis boletas"
	ButtonConfirm    = "✅ Confirmar"
	ButtonCancel     = "✖️ Cancelar"
	ButtonPrev       = "⬅️"
	ButtonNext       = "➡️"
	ButtonApprove    = "✅ Aprobar"
	ButtonReject     = "❌ Rechazar"
	ButtonStats      = "📊 Estadísticas"
	ButtonSold       = "📒 Talonario"
	ButtonDelete     = "🗑️ Eliminar"
	ButtonDeleteYes  = "Sí, eliminar"
	ButtonNewRaffle  = "➕ Nueva rifa"
	ButtonPending    = "🧾 Pagos en revisión"
	ButtonAdminRaffs = "🎟️ Rifas"
)

// Регистрация
const (
	AskName = "Para participar necesitamos tus datos.\n\n¿Cuál es tu nombre completo?"

	AskPhone = "Gracias, %s. Ahora envía tu número de teléfono."

	InvalidName = "El nombre no puede estar vacío. ¿Cuál es tu nombre completo?"

	InvalidPhone = "El teléfono debe tener entre 7 y 15 dígitos. Intenta de nuevo."

	Registered = "✅ Registro completo."
)

// Розыгрыши и выбор номеров
const (
	NoActiveRaffles = "No hay rifas activas en este momento."

	ChooseRaffle = "Elige una rifa:"

	RaffleUnavailable = "Esta rifa ya no está disponible."

	NumberTaken = "Ese número ya está ocupado."

	NothingSelected = "Selecciona al menos un número."

	ReservationCreated = "🎉 ¡Números reservados!\n\n" +
		"Rifa: %s\n" +
		"Números: %s\n" +
		"Cantidad: %d × %s\n" +
		"Total a pagar: %s\n\n" +
		"Tienes %d minutos para enviar la foto del comprobante de pago. " +
		"Si no la recibimos, los números se liberarán."

	ReservationConflict = "😕 Los números %s ya fueron tomados por otra persona. Elige otros."
)

// Чек и решения
const (
	ProofReceived = "📨 Comprobante recibido. Tu pago está en revisión, te avisaremos el resultado."

	ProofNoPending = "No tienes una reserva pendiente. Usa /rifas para elegir números."

	ProofAlreadySubmitted = "Tu pago ya está en revisión o fue procesado."

	ProofExpired = "⏰ Tu reserva expiró porque pasaron más de %d minutos. Los números fueron liberados, puedes reservar de nuevo."

	PaymentApproved = "✅ ¡Tu pago fue aprobado!\n\nRifa: %s\nTus números: %s\n\n¡Mucha suerte!"

	PaymentRejected = "❌ Tu pago para la rifa %s fue rechazado. Los números %s fueron liberados."

	PaymentExpired = "⏰ Tu reserva en la rifa %s expiró. Los números %s fueron liberados."

	ReviewRequest = "🧾 Nuevo comprobante\n\n" +
		"Pago #%d\n" +
		"Comprador: %s (ID %d)\n" +
		"Rifa: %s\n" +
		"Números: %s\n" +
		"Cantidad: %d × %s\n" +
		"Monto esperado: %s"

	ReviewLate = "\n⏰ Más de %d minutos desde la reserva"

	ReviewApproved = "✅ Pago #%d aprobado"

	ReviewRejected = "❌ Pago #%d rechazado"

	ReviewAlreadyDone = "Este pago ya fue procesado."

	PaymentNotFound = "Pago no encontrado."
)

// Мои номера
const (
	MyTicketsEmpty = "Aún no tienes reservas."

	MyTicketsHeader = "📋 Tus boletas:\n"
)

// Админка
const (
	AdminMenu = "🛠️ Panel de administración"

	AskRaffleName = "Nombre de la nueva rifa:"

	AskRafflePrice = "Precio por número (solo dígitos):"

	InvalidPrice = "El precio debe ser un número entero positivo."

	RaffleCreated = "✅ Rifa \"%s\" creada con %d números a %s cada uno."

	ConfirmDelete = "¿Eliminar la rifa \"%s\"? Se borrarán también sus números y pagos."

	RaffleDeleted = "🗑️ Rifa eliminada."

	NoPendingReviews = "No hay pagos en revisión."

	SoldEmpty = "Todavía no hay números vendidos."
)

// Меню команд бота, в порядке показа
var (
	CommandOrder = []string{"start", "rifas", "misboletas", "cancelar", "help"}

	CommandDescriptions = map[string]string{
		"start":      "Menú principal",
		"rifas":      "Ver rifas activas",
		"misboletas": "Mis números y pagos",
		"cancelar":   "Cancelar la operación actual",
		"help":       "Ayuda",
	}
)
