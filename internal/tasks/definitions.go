package tasks

import (
	"wagate_app_echo/internal/services"
)

// DefineTasks wires the shared services into the task singletons and
// registers every handler. Called once at worker startup.
func DefineTasks(subscriptions *services.SubscriptionService, whatsapp *services.WhatsAppService, email *services.EmailService) {
	ActivateServiceTask.Subscriptions = subscriptions
	ReconcileSessionsTask.Subscriptions = subscriptions
	SendOrderNotificationTask.WhatsApp = whatsapp
	SendOrderNotificationTask.Email = email

	RegisterHandler(LogInfoTask.TaskID(), LogInfoTask.HandleExecution)
	RegisterHandler(ActivateServiceTask.TaskID(), ActivateServiceTask.HandleExecution)
	RegisterHandler(SendOrderNotificationTask.TaskID(), SendOrderNotificationTask.HandleExecution)
	RegisterHandler(ReconcileSessionsTask.TaskID(), ReconcileSessionsTask.HandleExecution)
	RegisterHandler(ExpireTransactionsTask.TaskID(), ExpireTransactionsTask.HandleExecution)
}
