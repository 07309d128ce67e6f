package log

// Components defines standard component names used as the logger's
// "component" attribute.
const (
	ComponentApp     = "app"
	ComponentWorker  = "worker"
	ComponentImport  = "import"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
)
