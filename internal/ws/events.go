package ws

// Gateway namespaces, one per WebSocket endpoint.
const (
	NamespaceMachines    = "machines"
	NamespaceAnnotations = "annotations"
	NamespaceChat        = "chat"
)

// Server-to-client events.
const (
	MachineStatusChanged = "machineStatusChanged"

	AnnotationCreated = "annotationCreated"
	AnnotationUpdated = "annotationUpdated"
	AnnotationDeleted = "annotationDeleted"

	ChatHistory = "chatHistory"
	NewMessage  = "newMessage"

	ErrorEvent = "error"
)

// Client-to-server events.
const (
	JoinMachine      = "joinMachine"
	LeaveMachine     = "leaveMachine"
	CreateAnnotation = "createAnnotation"
	UpdateAnnotation = "updateAnnotation"
	DeleteAnnotation = "deleteAnnotation"

	JoinMachineChat  = "joinMachineChat"
	LeaveMachineChat = "leaveMachineChat"
	SendMessage      = "sendMessage"
	UserTyping       = "userTyping" // relayed both directions
)

// MachineRoom returns the room key scoping broadcasts to one machine.
func MachineRoom(machineID string) string {
	return "machine:" + machineID
}
