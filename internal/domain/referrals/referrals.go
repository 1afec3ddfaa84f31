package referrals

import (
	"github.com/minerdrop/minerdrop/internal/domain/accounts"
)

// Record is one referrer's edge list in the referral graph. A referred user id
// may appear in at most one record across the whole graph; the ledger service
// enforces that before calling Add.
type Record struct {
	referrerID  string
	displayName string
	referredIDs []string
}

func NewRecord(referrerID, displayName string) (*Record, error) {
	if err := accounts.ValidateAccountID(referrerID); err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &Record{
		referrerID:  referrerID,
		displayName: displayName,
	}, nil
}

// RestoreRecord rebuilds a record from a persisted representation.
func RestoreRecord(referrerID, displayName string, referredIDs []string) (*Record, error) {
	rec, err := NewRecord(referrerID, displayName)
	if err != nil {
		return nil, err
	}

	rec.referredIDs = append(rec.referredIDs, referredIDs...)

	return rec, nil
}

func (r *Record) ReferrerID() string {
	return r.referrerID
}

func (r *Record) DisplayName() string {
	return r.displayName
}

func (r *Record) SetDisplayName(name string) {
	r.displayName = name
}

func (r *Record) Count() int {
	return len(r.referredIDs)
}

// ReferredIDs returns the referred user ids in insertion order.
func (r *Record) ReferredIDs() []string {
	ids := make([]string, len(r.referredIDs))
	copy(ids, r.referredIDs)

	return ids
}

func (r *Record) HasReferred(userID string) bool {
	for _, id := range r.referredIDs {
		if id == userID {
			return true
		}
	}

	return false
}

func (r *Record) Add(userID string) {
	if r.HasReferred(userID) {
		return
	}

	r.referredIDs = append(r.referredIDs, userID)
}
