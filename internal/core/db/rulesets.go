package db

import (
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/solatis/searchcond/internal/rules"
	"github.com/solatis/searchcond/internal/types"
)

// RuleSetRecord is one stored version of a named rule document.
type RuleSetRecord struct {
	ID        types.RuleSetID `db:"rule_set_id"`
	Name      string          `db:"name"`
	Format    rules.Format    `db:"format"`
	Checksum  string          `db:"checksum"`
	Document  string          `db:"document"` // empty in List results
	RuleCount int             `db:"rule_count"`
	CreatedAt Timestamp       `db:"created_at"`
}

// Decode parses the stored document. Content problems are returned as issues.
func (r *RuleSetRecord) Decode() (*types.RuleSet, []rules.Issue) {
	return rules.ParseRules([]byte(r.Document), r.Format)
}

// SaveResult describes the outcome of RuleSetStore.Save.
type SaveResult struct {
	ID      types.RuleSetID
	Created bool // false when an identical document already existed
	Issues  []rules.Issue
}

// RuleSetStore persists versioned rule documents.
type RuleSetStore struct {
	queries *Queries
}

// NewRuleSetStore wraps loaded queries.
func NewRuleSetStore(queries *Queries) *RuleSetStore {
	return &RuleSetStore{queries: queries}
}

// Save stores doc as a new version of name. A document whose SHA-256 matches
// an existing version of the same name is not stored again; its ID is
// returned with Created false. Documents with issues are still stored.
func (s *RuleSetStore) Save(name string, doc []byte, format rules.Format) (SaveResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SaveResult{}, types.ErrEmptyRuleSetName
	}
	format, err := rules.ParseFormat(string(format))
	if err != nil {
		return SaveResult{}, err
	}

	rs, issues := rules.ParseRules(doc, format)
	checksum := fmt.Sprintf("%x", sha256.Sum256(doc))

	existing, err := s.byChecksum(name, checksum)
	if err != nil {
		return SaveResult{}, err
	}
	if existing != nil {
		return SaveResult{ID: existing.ID, Issues: issues}, nil
	}

	id := types.NewRuleSetID()
	_, err = s.queries.Exec("insert-rule-set",
		string(id), name, string(format), checksum, string(doc), rs.Len(),
		timestampArg(s.queries.DriverName(), time.Now()),
	)
	if err != nil {
		// A concurrent writer may have stored the same document
		if existing, lookupErr := s.byChecksum(name, checksum); lookupErr == nil && existing != nil {
			return SaveResult{ID: existing.ID, Issues: issues}, nil
		}
		return SaveResult{}, fmt.Errorf("failed to store rule set %s: %w", name, err)
	}

	return SaveResult{ID: id, Created: true, Issues: issues}, nil
}

// Latest returns the most recently stored version of name.
func (s *RuleSetStore) Latest(name string) (*RuleSetRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, types.ErrEmptyRuleSetName
	}

	var rec RuleSetRecord
	if err := s.queries.Get("get-latest-rule-set", &rec, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: name %q", types.ErrRuleSetNotFound, name)
		}
		return nil, fmt.Errorf("failed to load rule set %s: %w", name, err)
	}
	return &rec, nil
}

// Get returns one stored version by ID.
func (s *RuleSetStore) Get(id types.RuleSetID) (*RuleSetRecord, error) {
	if _, err := types.ParseRuleSetID(string(id)); err != nil {
		return nil, fmt.Errorf("%w: invalid id %q", types.ErrRuleSetNotFound, id)
	}

	var rec RuleSetRecord
	if err := s.queries.Get("get-rule-set", &rec, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %s", types.ErrRuleSetNotFound, id)
		}
		return nil, fmt.Errorf("failed to load rule set %s: %w", id, err)
	}
	return &rec, nil
}

// List returns every stored version ordered by name, then age. Documents are
// not loaded.
func (s *RuleSetStore) List() ([]RuleSetRecord, error) {
	var recs []RuleSetRecord
	if err := s.queries.Select("list-rule-sets", &recs); err != nil {
		return nil, fmt.Errorf("failed to list rule sets: %w", err)
	}
	return recs, nil
}

func (s *RuleSetStore) byChecksum(name, checksum string) (*RuleSetRecord, error) {
	var rec RuleSetRecord
	err := s.queries.Get("get-rule-set-by-checksum", &rec, name, checksum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up rule set %s: %w", name, err)
	}
	return &rec, nil
}
