package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Ngumi22/bds-sub000/internal/domain"
	"github.com/Ngumi22/bds-sub000/internal/query"
)

func TestCompileFlattensStages(t *testing.T) {
	pipeline := query.Compile([]query.Stage{
		query.MatchStage{Filter: query.Filter{}},
		query.GroupSpecStage{},
		query.CountStage{},
	})

	// GroupSpecStage expands to unwind+group, so four stages total.
	require.Len(t, pipeline, 4)
	assert.Equal(t, "$match", pipeline[0][0].Key)
	assert.Equal(t, "$unwind", pipeline[1][0].Key)
	assert.Equal(t, "$group", pipeline[2][0].Key)
	assert.Equal(t, "$count", pipeline[3][0].Key)
}

func TestSearchStageShape(t *testing.T) {
	pipeline := query.Compile([]query.Stage{query.SearchStage{Query: "wireless mouse"}})

	require.Len(t, pipeline, 1)
	require.Equal(t, "$search", pipeline[0][0].Key)

	body, ok := pipeline[0][0].Value.(bson.D)
	require.True(t, ok)
	assert.Equal(t, "index", body[0].Key)
	assert.Equal(t, query.DefaultSearchIndex, body[0].Value)

	compound, ok := body[1].Value.(bson.D)
	require.True(t, ok)
	should, ok := compound[0].Value.(bson.A)
	require.True(t, ok)
	assert.Len(t, should, 3)
	assert.Equal(t, "minimumShouldMatch", compound[1].Key)
	assert.Equal(t, 1, compound[1].Value)
}

func TestSearchStageCustomIndex(t *testing.T) {
	pipeline := query.Compile([]query.Stage{query.SearchStage{Index: "staging_products", Query: "x"}})

	body := pipeline[0][0].Value.(bson.D)
	assert.Equal(t, "staging_products", body[0].Value)
}

func TestSkipLimitStages(t *testing.T) {
	pipeline := query.Compile([]query.Stage{query.SkipStage{N: 48}, query.LimitStage{N: 24}})

	assert.Equal(t, int64(48), pipeline[0][0].Value)
	assert.Equal(t, int64(24), pipeline[1][0].Value)
}

func TestGroupCountStage(t *testing.T) {
	pipeline := query.Compile([]query.Stage{query.GroupCountStage{Field: "brand_id"}})

	body := pipeline[0][0].Value.(bson.D)
	assert.Equal(t, "$brand_id", body[0].Value)
}

func TestUnwindStage(t *testing.T) {
	pipeline := query.Compile([]query.Stage{query.UnwindStage{Field: "collection_ids"}})

	assert.Equal(t, "$unwind", pipeline[0][0].Key)
	assert.Equal(t, "$collection_ids", pipeline[0][0].Value)
}

func TestProjectIDScoreStage(t *testing.T) {
	pipeline := query.Compile([]query.Stage{query.ProjectIDScoreStage{}})

	body := pipeline[0][0].Value.(bson.D)
	assert.Equal(t, "_id", body[0].Key)
	assert.Equal(t, "score", body[1].Key)
}

func TestBuildSortDefaultsToNewest(t *testing.T) {
	s := query.BuildSort("rating", "", false)

	doc := s.FindSort()
	assert.Equal(t, "created_at", doc[0].Key)
	assert.Equal(t, -1, doc[0].Value)
	assert.Equal(t, "_id", doc[1].Key)
}

func TestBuildSortAscending(t *testing.T) {
	s := query.BuildSort(domain.SortPrice, domain.SortAsc, false)

	doc := s.FindSort()
	assert.Equal(t, "price", doc[0].Key)
	assert.Equal(t, 1, doc[0].Value)
}

func TestStageSortRankedPutsScoreFirst(t *testing.T) {
	s := query.BuildSort(domain.SortPrice, domain.SortAsc, true)

	doc := s.StageSort()
	require.Len(t, doc, 3)
	assert.Equal(t, "score", doc[0].Key)
	assert.Equal(t, "price", doc[1].Key)
	assert.Equal(t, "_id", doc[2].Key)
}

func TestStageSortUnrankedOmitsScore(t *testing.T) {
	s := query.BuildSort(domain.SortName, domain.SortDesc, false)

	doc := s.StageSort()
	require.Len(t, doc, 2)
	assert.Equal(t, "name", doc[0].Key)
	assert.Equal(t, -1, doc[0].Value)
}

func TestPopularitySortsBySales(t *testing.T) {
	s := query.BuildSort(domain.SortPopularity, domain.SortDesc, false)

	doc := s.FindSort()
	assert.Equal(t, "sales_count", doc[0].Key)
}
