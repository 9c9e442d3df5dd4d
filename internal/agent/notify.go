package agent

import "go.uber.org/zap"

// Notifier — канал уведомления оператора о потерянной отправке.
// Вкалывается как коллаборатор: диспетчер сам ничего не печатает.
type Notifier interface {
	Notify(message string, err error)
}

// ZapNotifier пишет уведомления в журнал сайдкара. У плагина в Revit это был
// модальный TaskDialog; здесь роль "окна оператору" играет error-лог агента.
type ZapNotifier struct {
	logger *zap.Logger
}

func NewZapNotifier(logger *zap.Logger) *ZapNotifier {
	return &ZapNotifier{logger: logger.Named("notify")}
}

func (n *ZapNotifier) Notify(message string, err error) {
	n.logger.Error(message, zap.Error(err))
}
