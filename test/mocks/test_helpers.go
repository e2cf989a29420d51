package mocks

import (
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
)

// NewTestUser builds an active user with the given role.
func NewTestUser(id string, role domain.Role) domain.User {
	return domain.User{
		ID:        id,
		Username:  id,
		Email:     id + "@campus.test",
		Name:      "User " + id,
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// NewTestBook builds a book with every copy on the shelf.
func NewTestBook(id, title string, tag domain.Tag, copies int) domain.Book {
	return domain.Book{
		ID:              id,
		Title:           title,
		Author:          "Author of " + title,
		Department:      domain.DepartmentOther,
		Tag:             tag,
		TotalCopies:     copies,
		AvailableCopies: copies,
		CreatedAt:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Clock is a settable time source for services under test.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var (
	keyOnce sync.Once
	testKey *rsa.PrivateKey
)

// TestKeys returns an RSA key pair shared by the tests of a package.
func TestKeys(t *testing.T) (*rsa.PrivateKey, *rsa.PublicKey) {
	t.Helper()
	var err error
	keyOnce.Do(func() {
		testKey, err = rsa.GenerateKey(rand.Reader, 2048)
	})
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return testKey, &testKey.PublicKey
}
