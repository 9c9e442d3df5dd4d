package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State — фаза жизненного цикла данных дашборда.
type State string

const (
	StateUnloaded State = "unloaded"
	StateLoading  State = "loading"
	StateLoaded   State = "loaded"
)

// DataSource описывает, откуда дашборд берёт нормализованные строки.
type DataSource interface {
	Load(ctx context.Context) (rows []Row, roster []string)
}

// View — полный входной контракт слоя представления. Рендерер не владеет
// никакой логикой вывода данных: всё, что он показывает, лежит здесь.
type View struct {
	State         State        `json:"state"`
	Rows          []Row        `json:"rows"` // уже отфильтрованы по пользователю и окну
	Hourly        []HourBucket `json:"hourly"`
	Summary       Summary      `json:"summary"`
	Roster        []string     `json:"actors"`
	SelectedActor string       `json:"selected_actor"`
	ActiveWindow  string       `json:"active_window"`
}

// Dashboard владеет нормализованным набором строк и производит представление.
// Набор заменяется целиком по завершении загрузки: читатель никогда не видит
// наполовину обновлённые данные. Смена фильтров сеть не трогает — только
// заново прогоняет агрегатор по уже загруженному набору.
type Dashboard struct {
	mu     sync.Mutex
	source DataSource
	logger *zap.Logger
	nowFn  func() time.Time

	state         State
	rows          []Row
	roster        []string
	selectedActor string
	activeWindow  string
}

func New(source DataSource, logger *zap.Logger) *Dashboard {
	return &Dashboard{
		source:       source,
		logger:       logger.Named("dashboard"),
		nowFn:        time.Now,
		state:        StateUnloaded,
		rows:         []Row{},
		roster:       []string{},
		activeWindow: Window24h,
	}
}

// Refresh перечитывает данные с бэкенда и атомарно подменяет набор строк.
// Повторный вызов с неизменившимися данными воспроизводит то же состояние.
func (d *Dashboard) Refresh(ctx context.Context) {
	d.mu.Lock()
	d.state = StateLoading
	d.mu.Unlock()

	// Сетевая фаза идёт без блокировки: View в это время отдаёт прежний набор
	rows, roster := d.source.Load(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.rows = rows
	d.roster = roster
	// Если пользователь ещё не выбран — берём первого из списка
	if d.selectedActor == "" && len(roster) > 0 {
		d.selectedActor = roster[0]
	}
	d.state = StateLoaded
	d.logger.Info("data reloaded",
		zap.Int("rows", len(rows)),
		zap.Int("actors", len(roster)))
}

// SetActor меняет выбранного пользователя. Только пересчёт, без сети.
func (d *Dashboard) SetActor(actor string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selectedActor = actor
}

// SetWindow меняет активное временное окно. Нераспознанный ключ приводится
// к суточному — так же его трактует WindowDuration.
func (d *Dashboard) SetWindow(window string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch window {
	case Window1h, Window24h, Window7d:
		d.activeWindow = window
	default:
		d.activeWindow = Window24h
	}
}

// View собирает представление по текущему набору и фильтрам.
// Почасовые корзины считаются по полному набору, сводка — по отфильтрованному.
func (d *Dashboard) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()

	filtered := FilterRows(d.rows, d.selectedActor, d.activeWindow, d.nowFn())
	return View{
		State:         d.state,
		Rows:          filtered,
		Hourly:        BucketByHour(d.rows),
		Summary:       Summarize(filtered),
		Roster:        append([]string(nil), d.roster...),
		SelectedActor: d.selectedActor,
		ActiveWindow:  d.activeWindow,
	}
}
