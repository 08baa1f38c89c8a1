package sweep

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/katalvlaran/mixgamp/gamp"
)

// ErrStore indicates a failure of the LevelDB trial store.
var ErrStore = errors.New("sweep: trial store failure")

// prefixTrial starts every trial key: trial/<fingerprint>/<n>/<run>.
const prefixTrial = "trial/"

// Store is a LevelDB-backed cache of finished trials. LevelDB is
// single-writer across processes; within a process the Store is safe for
// concurrent use by the sweep workers.
type Store struct {
	db *leveldb.DB
}

// trialRecord is the persisted form of a trial.
type trialRecord struct {
	Corr   map[Algorithm][2]float64 `json:"corr"`
	MSE    map[Algorithm][2]float64 `json:"mse"`
	Status gamp.Status              `json:"status"`
	SEPred [2]float64               `json:"se_pred"`
}

// OpenStore opens (or creates) the trial store at dir.
//
// Errors: ErrStore when the database cannot be opened (e.g. locked by
// another process).
func OpenStore(dir string) (*Store, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("OpenStore %s: %w: %v", dir, ErrStore, err)
	}

	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("Store.Close: %w: %v", ErrStore, err)
	}

	return nil
}

// Count returns the number of trials stored under fingerprint fp.
func (s *Store) Count(fp string) (int, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefixTrial+fp+"/")), nil)
	defer iter.Release()
	var n int
	for iter.Next() {
		n++
	}
	if err := iter.Error(); err != nil {
		return n, fmt.Errorf("Store.Count: %w: %v", ErrStore, err)
	}

	return n, nil
}

// load returns the stored trial for (fp, n, run); ok is false on a miss.
func (s *Store) load(fp string, n, run int) (trial, bool, error) {
	data, err := s.db.Get(trialKey(fp, n, run), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return trial{}, false, nil
	}
	if err != nil {
		return trial{}, false, fmt.Errorf("Store.load: %w: %v", ErrStore, err)
	}
	var rec trialRecord
	if err = json.Unmarshal(data, &rec); err != nil {
		return trial{}, false, fmt.Errorf("Store.load: %w: %v", ErrStore, err)
	}

	return trial{corr: rec.Corr, mse: rec.MSE, status: rec.Status, sePred: rec.SEPred}, true, nil
}

// save persists t under (fp, n, run). Trials holding NaN cannot be encoded
// and are reported as ErrStore.
func (s *Store) save(fp string, n, run int, t trial) error {
	data, err := json.Marshal(trialRecord{Corr: t.corr, MSE: t.mse, Status: t.status, SEPred: t.sePred})
	if err != nil {
		return fmt.Errorf("Store.save: %w: %v", ErrStore, err)
	}
	if err = s.db.Put(trialKey(fp, n, run), data, nil); err != nil {
		return fmt.Errorf("Store.save: %w: %v", ErrStore, err)
	}

	return nil
}

func trialKey(fp string, n, run int) []byte {
	return []byte(fmt.Sprintf("%s%s/%d/%d", prefixTrial, fp, n, run))
}
