package pgsql

import (
	"context"
	"fmt"

	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
)

// sequenceNames maps reference prefixes to the sequences created by the
// migrations.
var sequenceNames = map[string]string{
	portsrepo.PrefixAccount:     "seq_acc",
	portsrepo.PrefixTransaction: "seq_txn",
	portsrepo.PrefixBatch:       "seq_bat",
	portsrepo.PrefixInstruction: "seq_so",
	portsrepo.PrefixLoan:        "seq_ln",
	portsrepo.PrefixDeposit:     "seq_fd",
	portsrepo.PrefixScheduled:   "seq_st",
}

// PgxSequences hands out references from Postgres sequences.
type PgxSequences struct {
	BaseRepository
}

var _ portsrepo.SequenceGenerator = (*PgxSequences)(nil)

func (r *PgxSequences) NextReference(ctx context.Context, prefix string) (string, error) {
	name, ok := sequenceNames[prefix]
	if !ok {
		return "", fmt.Errorf("unknown reference prefix %q", prefix)
	}
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT nextval($1::regclass)`, name).Scan(&n); err != nil {
		return "", mapError(err, "allocate reference "+prefix)
	}
	return fmt.Sprintf("%s%06d", prefix, n), nil
}
