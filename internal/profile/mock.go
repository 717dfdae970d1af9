package profile

// MockStore is a mock implementation of the ProfileStore interface for testing.
type MockStore struct {
	GetFunc     func(userID string) (*Profile, error)
	GetManyFunc func(userIDs []string) (map[string]Profile, error)
	UpsertFunc  func(p Profile) error
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) Get(userID string) (*Profile, error) {
	if m.GetFunc != nil {
		return m.GetFunc(userID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) GetMany(userIDs []string) (map[string]Profile, error) {
	if m.GetManyFunc != nil {
		return m.GetManyFunc(userIDs)
	}
	return map[string]Profile{}, nil
}

func (m *MockStore) Upsert(p Profile) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(p)
	}
	return nil
}
