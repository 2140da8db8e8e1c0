package message

// PayloadVariant names the four closed payload kinds a Message may carry.
type PayloadVariant string

const (
	VariantCommand  PayloadVariant = "Command"
	VariantQuery    PayloadVariant = "Query"
	VariantEvent    PayloadVariant = "Event"
	VariantResponse PayloadVariant = "Response"
)

// Payload is implemented by every concrete command/query/event/response
// case. Kind returns the case's wire tag, used both for JSON dispatch and
// for retry/dead-letter diagnostics.
type Payload interface {
	Kind() string
}

// CommandPayload is the sealed set of command cases. Unlike the original
// source's single untyped Custom(data) case, every recognised command here
// is a concrete struct; RawCommand is the only catch-all, carrying opaque
// bytes forward for kinds this build doesn't recognise.
type CommandPayload interface {
	Payload
	isCommand()
}

// QueryPayload is the sealed set of query cases.
type QueryPayload interface {
	Payload
	isQuery()
}

// EventPayload is the sealed set of event cases.
type EventPayload interface {
	Payload
	isEvent()
}

// ResponsePayload is the sealed set of response cases.
type ResponsePayload interface {
	Payload
	isResponse()
}
