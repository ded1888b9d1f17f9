package kafka

// Record headers
const (
	HeaderRecordKind = "record_kind"
	HeaderService    = "service"
	HeaderOperation  = "operation"
)

// Kafka topics
const (
	TopicTelemetry = "multiplication-telemetry"
)

// Message is a telemetry payload ready to be published
type Message struct {
	Key       string
	Kind      string
	Service   string
	Operation string
	Value     []byte
}
