// Package store persists finalized candidate records, one JSON file per
// candidate id.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/talentscout/screener/internal/candidate"
)

// ErrNotFound is returned by Load for unknown candidate ids.
var ErrNotFound = errors.New("candidate record not found")

// Turn is one conversation message in a persisted record.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Record is the persisted shape of a completed interview: the flattened
// profile, the flat tech stack union, the generated questions, the full
// turn history and a completion timestamp.
type Record struct {
	Consent          bool     `json:"consent"`
	FullName         string   `json:"full_name"`
	Email            string   `json:"email"`
	Phone            string   `json:"phone"`
	YearsExperience  int      `json:"years_experience"`
	DesiredPositions []string `json:"desired_positions"`
	CurrentLocation  string   `json:"current_location"`
	Language         string   `json:"language"`
	TechStack        []string `json:"tech_stack"`
	Questions        []string `json:"questions"`
	Conversation     []Turn   `json:"conversation"`
	Timestamp        string   `json:"timestamp"`
}

// NewRecord flattens a validated profile into a Record.
func NewRecord(profile candidate.Profile, questions []string, conversation []Turn) *Record {
	return &Record{
		Consent:          profile.Consent,
		FullName:         profile.FullName,
		Email:            profile.Email,
		Phone:            profile.Phone,
		YearsExperience:  profile.YearsExperience,
		DesiredPositions: profile.DesiredPositions,
		CurrentLocation:  profile.CurrentLocation,
		Language:         profile.Language,
		TechStack:        profile.TechStack.All(),
		Questions:        questions,
		Conversation:     conversation,
	}
}

// Store writes candidate records under a root directory. Safe for use by
// concurrent sessions sharing one Store.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates the storage root if needed.
func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save stamps the record with the completion time and writes it atomically
// (temp file then rename), fully replacing any prior record for the id.
func (s *Store) Save(candidateID string, record *Record) error {
	if record == nil {
		return errors.New("record is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record.Timestamp = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, candidateID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path(candidateID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publishing record: %w", err)
	}

	return nil
}

// Load reads the record for a candidate id, or ErrNotFound.
func (s *Store) Load(candidateID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(candidateID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading record: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}

	return &record, nil
}

// Exists scans all persisted records for a matching email, used to detect
// duplicate applications across sessions.
func (s *Store) Exists(email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return false, fmt.Errorf("listing records: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return false, fmt.Errorf("reading record %s: %w", entry.Name(), err)
		}

		var record Record
		if err := json.Unmarshal(data, &record); err != nil {
			// A foreign or corrupt file in the data dir should not
			// break duplicate detection.
			continue
		}

		if strings.EqualFold(record.Email, email) {
			return true, nil
		}
	}

	return false, nil
}

func (s *Store) path(candidateID string) string {
	return filepath.Join(s.dir, candidateID+".json")
}
