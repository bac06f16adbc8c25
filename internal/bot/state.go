package bot

import "sync"

// Step tags the position of one user inside a multi-step conversation. The
// zero value means no conversation is in flight.
type Step int

const (
	StepNone Step = iota
	StepAskSkills
	StepAskLocation
	StepJobTitle
	StepJobDescription
	StepJobBudget
)

func (s Step) String() string {
	switch s {
	case StepNone:
		return "none"
	case StepAskSkills:
		return "ask_skills"
	case StepAskLocation:
		return "ask_location"
	case StepJobTitle:
		return "job_title"
	case StepJobDescription:
		return "job_description"
	case StepJobBudget:
		return "job_budget"
	}
	return "unknown"
}

// Conversation is the ephemeral per-user accumulator. It holds fields that
// are not yet committed to the store; losing it must never produce a partial
// record, only a restart prompt.
type Conversation struct {
	Step        Step
	Title       string
	Description string
}

// StateStore keeps one Conversation per user id. The engine is its only
// consumer; implementations must be safe for concurrent use.
type StateStore interface {
	Get(userID int64) (Conversation, bool)
	Set(userID int64, c Conversation)
	Clear(userID int64)
}

type memoryStateStore struct {
	mu     sync.Mutex
	states map[int64]Conversation
}

// NewMemoryStateStore returns the default in-process StateStore. State is
// lost on restart: in-flight conversations restart from the last committed
// step instead of resuming mid-form.
func NewMemoryStateStore() StateStore {
	return &memoryStateStore{states: make(map[int64]Conversation)}
}

func (m *memoryStateStore) Get(userID int64) (Conversation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.states[userID]
	return c, ok
}

func (m *memoryStateStore) Set(userID int64, c Conversation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = c
}

func (m *memoryStateStore) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
}
