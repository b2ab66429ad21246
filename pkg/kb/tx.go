package kb

import "github.com/dgraph-io/badger/v4"

// withReadTxn executes fn within a read-only snapshot.
func (s *Store) withReadTxn(fn func(*badger.Txn) error) error {
	txn := s.db.NewTransaction(false)
	defer txn.Discard()
	return fn(txn)
}

// withWriteTxn executes fn within a write transaction and commits it.
func (s *Store) withWriteTxn(fn func(*badger.Txn) error) error {
	txn := s.db.NewTransaction(true)
	defer txn.Discard()
	if err := fn(txn); err != nil {
		return err
	}
	return txn.Commit()
}
