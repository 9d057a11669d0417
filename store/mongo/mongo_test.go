package mongo

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/actorgraph/errors"
	"github.com/teranos/actorgraph/models"
	"github.com/teranos/actorgraph/store"
	"github.com/teranos/actorgraph/store/storetest"
)

const testURIEnv = "ACTORGRAPH_MONGO_TEST_URI"

// skipIfNoMongo skips integration tests unless a server is configured
func skipIfNoMongo(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB integration test in short mode")
	}
	uri := os.Getenv(testURIEnv)
	if uri == "" {
		t.Skipf("%s not set", testURIEnv)
	}
	return uri
}

func TestStoreContract(t *testing.T) {
	uri := skipIfNoMongo(t)

	storetest.Run(t, func(t *testing.T) store.Store {
		name := "actorgraph_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		s, err := Open(context.Background(), uri, name, zaptest.NewLogger(t).Sugar())
		require.NoError(t, err)
		t.Cleanup(func() { s.Drop(context.Background()) })
		return s
	})
}

func TestOpen_Unreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("dials a closed port")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()

	_, err := Open(ctx, "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=100", "x", nil)
	require.Error(t, err)
	assert.True(t, errors.IsServiceUnavailableError(err))
}

func TestObjectID(t *testing.T) {
	id, err := objectID(storetest.Zac)
	require.NoError(t, err)
	assert.Equal(t, storetest.Zac, id.Hex())

	_, err = objectID("zac")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestDocumentConversionKeepsOrder(t *testing.T) {
	ds := storetest.Dataset()
	for _, a := range ds.Actors {
		doc, err := actorDocFrom(a)
		require.NoError(t, err)
		assert.Equal(t, a, doc.model())
	}
	for _, m := range ds.Movies {
		doc, err := movieDocFrom(m)
		require.NoError(t, err)
		assert.Equal(t, m, doc.model())
	}
}

func TestDocumentConversionRejectsBadReferences(t *testing.T) {
	_, err := actorDocFrom(models.Actor{ID: storetest.Zac, Name: "Zac", Movies: []string{"hairspray"}})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidRequestError(err))

	_, err = movieDocFrom(models.Movie{ID: "x"})
	assert.Error(t, err)
}

func TestNameContainsQuotesPattern(t *testing.T) {
	filter := nameContains("Lone_Actor (100%)", true)
	re, ok := filter["name"].(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, `Lone_Actor \(100%\)`, re.Pattern)
	assert.Equal(t, "i", re.Options)

	re = nameContains("Efron", false)["name"].(primitive.Regex)
	assert.Empty(t, re.Options)
}

func TestCollaboratorsPipelineShape(t *testing.T) {
	oid, _ := objectID(storetest.Zac)
	pipeline := collaboratorsPipeline(oid)

	var stages []string
	for _, stage := range pipeline {
		stages = append(stages, stage[0].Key)
	}
	assert.Equal(t, []string{"$match", "$unwind", "$match", "$group", "$lookup", "$unwind", "$replaceRoot", "$sort"}, stages)

	lookup := pipeline[4][0].Value.(bson.M)
	assert.Equal(t, actorCollection, lookup["from"])
}

func TestRandomMoviePipeline(t *testing.T) {
	pipeline := randomMoviePipeline(2000, 2020)
	match := pipeline[0][0].Value.(bson.M)["year"].(bson.M)
	assert.Equal(t, 2000, match["$gte"])
	assert.Equal(t, 2020, match["$lte"])
	assert.Equal(t, "$sample", pipeline[1][0].Key)
}
