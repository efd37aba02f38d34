package sheets

// Sheet names
const (
	SheetHabits    = "Habits"
	SheetHabitLogs = "HabitLogs"
	SheetTasks     = "Tasks"
	SheetSettings  = "Settings"
)

// DefaultTitle is used when a spreadsheet is created without a title
const DefaultTitle = "BakaTracker Data"

// Header rows, column A is always the row key
var (
	HabitsHeader    = []string{"id", "name", "icon", "color", "frequency", "createdAt", "streak", "goal"}
	HabitLogsHeader = []string{"id", "habitId", "date", "completed", "notes"}
	TasksHeader     = []string{"id", "title", "description", "dueDate", "dueTime", "priority", "category", "completed", "createdAt"}
	SettingsHeader  = []string{"key", "value"}
)

// layout lists every sheet with its header, in creation order
var layout = []struct {
	name   string
	header []string
}{
	{SheetHabits, HabitsHeader},
	{SheetHabitLogs, HabitLogsHeader},
	{SheetTasks, TasksHeader},
	{SheetSettings, SettingsHeader},
}

// SheetNames returns the sheet names in creation order
func SheetNames() []string {
	names := make([]string, 0, len(layout))
	for _, l := range layout {
		names = append(names, l.name)
	}
	return names
}

// fullRange addresses every used column of a sheet
func fullRange(sheet string) string {
	return sheet + "!A:Z"
}
