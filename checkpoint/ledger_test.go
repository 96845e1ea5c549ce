package checkpoint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	ledger, err := Open("", true)
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })
	return ledger
}

func TestLedger_MarkAndCheck(t *testing.T) {
	ledger := openTestLedger(t)

	uploaded, err := ledger.IsUploaded("pinecone", "chunk_0", 42)
	require.NoError(t, err)
	assert.False(t, uploaded, "fresh ledger must report nothing uploaded")

	require.NoError(t, ledger.Mark("pinecone", "chunk_0", 42))

	uploaded, err = ledger.IsUploaded("pinecone", "chunk_0", 42)
	require.NoError(t, err)
	assert.True(t, uploaded)
}

func TestLedger_ChangedContentForcesReupload(t *testing.T) {
	ledger := openTestLedger(t)

	require.NoError(t, ledger.Mark("pinecone", "chunk_0", 42))

	uploaded, err := ledger.IsUploaded("pinecone", "chunk_0", 43)
	require.NoError(t, err)
	assert.False(t, uploaded, "a different checksum means the chunk changed and must go up again")
}

func TestLedger_TargetsAreIndependent(t *testing.T) {
	ledger := openTestLedger(t)

	require.NoError(t, ledger.Mark("pinecone", "chunk_0", 42))

	uploaded, err := ledger.IsUploaded("pgvector", "chunk_0", 42)
	require.NoError(t, err)
	assert.False(t, uploaded, "an upload to one target must not mark the other")
}

func TestLedger_MarkBatchAndCount(t *testing.T) {
	ledger := openTestLedger(t)

	require.NoError(t, ledger.MarkBatch("pgvector", map[string]uint64{
		"chunk_0": 1,
		"chunk_1": 2,
		"chunk_2": 3,
	}))

	count, err := ledger.Count("pgvector")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = ledger.Count("pinecone")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestLedger_Clear(t *testing.T) {
	ledger := openTestLedger(t)

	require.NoError(t, ledger.MarkBatch("pinecone", map[string]uint64{
		"chunk_0": 1,
		"chunk_1": 2,
	}))
	require.NoError(t, ledger.Mark("pgvector", "chunk_0", 1))

	require.NoError(t, ledger.Clear("pinecone"))

	count, err := ledger.Count("pinecone")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = ledger.Count("pgvector")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "clearing one target must leave the other intact")
}

func TestEntryRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Microsecond)
	encoded := encodeEntry(entry{Checksum: 12345678901234567890, UploadedAt: now})
	require.Len(t, encoded, entrySize)

	decoded, err := decodeEntry(encoded)
	require.NoError(t, err)
	assert.Equal(t, uint64(12345678901234567890), decoded.Checksum)
	assert.True(t, decoded.UploadedAt.Equal(now))
}

func TestDecodeEntry_Truncated(t *testing.T) {
	_, err := decodeEntry([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrCorruptEntry)
}
