package pinecone

import (
	"testing"

	"github.com/pinecone-io/go-pinecone/pinecone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexByName(t *testing.T) {
	indexes := []*pinecone.Index{
		{Name: "nelson-book", Host: "nelson-book.svc.pinecone.io"},
		nil,
		{Name: "scratch"},
	}

	found := indexByName(indexes, "nelson-book")
	require.NotNil(t, found)
	assert.Equal(t, "nelson-book.svc.pinecone.io", found.Host)

	assert.Nil(t, indexByName(indexes, "missing"), "an absent index must report nil, not match")
	assert.Nil(t, indexByName(nil, "nelson-book"))
}
