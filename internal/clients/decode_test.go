package clients

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetItemArray(t *testing.T) {
	item, err := datasetItem([]byte(`[{"manufacturers": []}, {"ignored": true}]`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"manufacturers": []}`, string(item))
}

func TestDatasetItemBareObject(t *testing.T) {
	item, err := datasetItem([]byte(`{"categories": {}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"categories": {}}`, string(item))
}

func TestDatasetItemEmpty(t *testing.T) {
	for _, body := range []string{"", "   ", "[]"} {
		item, err := datasetItem([]byte(body))
		require.NoError(t, err)
		assert.Nil(t, item)
	}
}

func TestDatasetItemGarbage(t *testing.T) {
	_, err := datasetItem([]byte("not json"))
	assert.Error(t, err)
}

func TestDecodeItemFieldManufacturers(t *testing.T) {
	body := []byte(`[{"manufacturers": [
		{"manufacturerId": 183, "brand": "VW"},
		{"manufacturerId": 16, "brand": "BMW"}
	]}]`)

	var manufacturers []Manufacturer
	require.NoError(t, decodeItemField(body, "manufacturers", &manufacturers))
	require.Len(t, manufacturers, 2)
	assert.Equal(t, int64(183), manufacturers[0].ManufacturerID)
	assert.Equal(t, "BMW", manufacturers[1].Brand)
}

func TestDecodeItemFieldMissingKeyLeavesDestEmpty(t *testing.T) {
	var articles []Article
	require.NoError(t, decodeItemField([]byte(`[{"models": []}]`), "articles", &articles))
	assert.Empty(t, articles)

	require.NoError(t, decodeItemField([]byte(`[{"articles": null}]`), "articles", &articles))
	assert.Empty(t, articles)
}

func TestDecodeCategoriesV1(t *testing.T) {
	body := []byte(`[{"categories": [
		{"level": 2, "levelText_1": "Engine", "levelId_1": "100002",
		 "levelText_2": "Oil Filter", "levelId_2": "100806",
		 "levelText_3": null, "levelId_3": null,
		 "levelText_4": null, "levelId_4": null}
	]}]`)

	categories, err := decodeCategories(body, "v1")
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, 2, categories[0].Level)
	require.NotNil(t, categories[0].LevelText2)
	assert.Equal(t, "Oil Filter", *categories[0].LevelText2)
	assert.Nil(t, categories[0].LevelText3)
}

func TestDecodeCategoriesV2FlattensLeaves(t *testing.T) {
	body := []byte(`[{"categories": {
		"Engine": {
			"categoryName": "Engine",
			"categoryId": 100002,
			"children": {
				"Filters": {
					"categoryName": "Filters",
					"categoryId": "100005",
					"children": {}
				},
				"Lubrication": {
					"categoryName": "Lubrication",
					"categoryId": 100006,
					"children": {
						"Oil Filter": {
							"categoryName": "Oil Filter",
							"categoryId": 100806,
							"children": {}
						}
					}
				}
			}
		},
		"Brakes": {
			"categoryName": "Brakes",
			"categoryId": 100010,
			"children": {}
		}
	}}]`)

	categories, err := decodeCategories(body, "v2")
	require.NoError(t, err)
	require.Len(t, categories, 3)

	// Top-level node with no children becomes a level-1 row.
	brakes := categories[0]
	assert.Equal(t, 1, brakes.Level)
	assert.Equal(t, "Brakes", *brakes.LevelText1)
	assert.Equal(t, "100010", *brakes.LevelID1)
	assert.Nil(t, brakes.LevelText2)

	// Direct leaf child of a root.
	filters := categories[1]
	assert.Equal(t, 2, filters.Level)
	assert.Equal(t, "Engine", *filters.LevelText1)
	assert.Equal(t, "100002", *filters.LevelID1)
	assert.Equal(t, "Filters", *filters.LevelText2)
	assert.Equal(t, "100005", *filters.LevelID2)

	// Leaf two levels down carries the full path.
	oil := categories[2]
	assert.Equal(t, 3, oil.Level)
	assert.Equal(t, "Engine", *oil.LevelText1)
	assert.Equal(t, "Lubrication", *oil.LevelText2)
	assert.Equal(t, "100006", *oil.LevelID2)
	assert.Equal(t, "Oil Filter", *oil.LevelText3)
	assert.Equal(t, "100806", *oil.LevelID3)
}

func TestDecodeCategoriesV3KeysAreIDs(t *testing.T) {
	body := []byte(`{"categories": {
		"100002": {
			"text": "Engine",
			"children": {
				"100806": {"text": "Oil Filter", "children": {}}
			}
		}
	}}`)

	categories, err := decodeCategories(body, "v3")
	require.NoError(t, err)
	require.Len(t, categories, 1)

	row := categories[0]
	assert.Equal(t, 2, row.Level)
	assert.Equal(t, "Engine", *row.LevelText1)
	assert.Equal(t, "100002", *row.LevelID1)
	assert.Equal(t, "Oil Filter", *row.LevelText2)
	assert.Equal(t, "100806", *row.LevelID2)
}

func TestDecodeCategoriesV1Empty(t *testing.T) {
	categories, err := decodeCategories([]byte(`[]`), "v1")
	require.NoError(t, err)
	assert.Empty(t, categories)
}
