package types

// TaskKind identifies how a task is executed
type TaskKind string

const (
	// KindCodeGeneration produces or rewrites the entry file and validates it by running it
	KindCodeGeneration TaskKind = "code_generation"
	// KindMultipleChoice asks the human to pick one of the task's resources
	KindMultipleChoice TaskKind = "multiple_choice"
)

// IsValid checks if a task kind is valid
func (k TaskKind) IsValid() bool {
	for _, valid := range AllTaskKinds() {
		if k == valid {
			return true
		}
	}
	return false
}

// AllTaskKinds returns all valid task kind values
func AllTaskKinds() []TaskKind {
	return []TaskKind{KindCodeGeneration, KindMultipleChoice}
}

// String returns the string representation of the task kind
func (k TaskKind) String() string {
	return string(k)
}

// Role tags a chat message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Dataset detector verdicts that are not dataset identifiers
const (
	DatasetNoInformation = "no_data_information_provided"
	DatasetCSVTable      = "csv_table_data"
)

// DefaultLanguage is used when a project is created without one
const DefaultLanguage = "python"
