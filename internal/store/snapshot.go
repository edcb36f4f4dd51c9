package store

import (
	"bytes"
	"database/sql"
	"encoding/json"

	"github.com/klauspost/compress/zstd"

	"dimpact/internal/dimpacterr"
	"dimpact/internal/symbol"
)

// snapshotPayload is the serialized shape of the compressed graph_snapshot
// blob: the full symbol set and resolved reference set as of the last
// build_all or update_paths call that left the snapshot valid.
type snapshotPayload struct {
	Symbols []symbol.Symbol    `json:"symbols"`
	Edges   []symbol.Reference `json:"edges"`
}

// writeSnapshot compresses and stores a fresh, valid snapshot, replacing any
// prior one. Every failure comes back as a wrapped error: BuildAll and
// UpdatePaths return it to their caller, while LoadGraph logs it and
// continues.
func writeSnapshot(db *sql.DB, symbols []symbol.Symbol, edges []symbol.Reference) error {
	payload, err := json.Marshal(snapshotPayload{Symbols: symbols, Edges: edges})
	if err != nil {
		return dimpacterr.Wrap(dimpacterr.KindIO, err, "encoding graph snapshot")
	}

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		return dimpacterr.Wrap(dimpacterr.KindIO, err, "opening snapshot compressor")
	}
	if _, err := enc.Write(payload); err != nil {
		enc.Close()
		return dimpacterr.Wrap(dimpacterr.KindIO, err, "compressing graph snapshot")
	}
	if err := enc.Close(); err != nil {
		return dimpacterr.Wrap(dimpacterr.KindIO, err, "flushing graph snapshot")
	}

	_, err = db.Exec(`INSERT INTO graph_snapshot(id, blob, valid) VALUES (1, ?, 1)
		ON CONFLICT(id) DO UPDATE SET blob = excluded.blob, valid = excluded.valid`, buf.Bytes())
	if err != nil {
		return dimpacterr.Wrap(dimpacterr.KindIO, err, "writing graph snapshot")
	}
	return nil
}

// readSnapshot returns the decompressed, decoded snapshot if one is present
// and marked valid. ok is false (with a nil error) on a missing or
// invalidated snapshot, the normal "reconstruct from relational tables"
// case rather than a failure.
func readSnapshot(db *sql.DB) (symbols []symbol.Symbol, edges []symbol.Reference, ok bool, err error) {
	var blob []byte
	var valid int
	scanErr := db.QueryRow(`SELECT blob, valid FROM graph_snapshot WHERE id = 1`).Scan(&blob, &valid)
	if scanErr == sql.ErrNoRows {
		return nil, nil, false, nil
	}
	if scanErr != nil {
		return nil, nil, false, dimpacterr.Wrap(dimpacterr.KindIO, scanErr, "reading graph snapshot")
	}
	if valid == 0 {
		return nil, nil, false, nil
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, nil, false, dimpacterr.Wrap(dimpacterr.KindIO, err, "opening snapshot decompressor")
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, nil, false, dimpacterr.Wrap(dimpacterr.KindIO, err, "decompressing graph snapshot")
	}

	var payload snapshotPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, nil, false, dimpacterr.Wrap(dimpacterr.KindIO, err, "decoding graph snapshot")
	}
	return payload.Symbols, payload.Edges, true, nil
}

// invalidateSnapshot marks the snapshot stale without deleting it, so a
// concurrent reader mid-transaction never sees a torn blob; the next
// load_graph call reconstructs from the relational tables and rewrites it.
func invalidateSnapshot(tx *sql.Tx) error {
	_, err := tx.Exec(`UPDATE graph_snapshot SET valid = 0 WHERE id = 1`)
	if err != nil {
		return dimpacterr.Wrap(dimpacterr.KindIO, err, "invalidating graph snapshot")
	}
	return nil
}
