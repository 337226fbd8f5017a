package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/conorfennell/kapp/internal/domain"
)

type memStore struct {
	items map[string]domain.VocabularyItem
	fail  string
}

func (m *memStore) UpsertVocabulary(_ context.Context, v *domain.VocabularyItem) (bool, error) {
	if v.Korean == m.fail {
		return false, errors.New("constraint failed")
	}
	key := v.Korean + "|" + v.English
	_, exists := m.items[key]
	m.items[key] = *v
	return !exists, nil
}

func newStore() *memStore { return &memStore{items: map[string]domain.VocabularyItem{}} }

const header = "korean,romanization,english,part_of_speech,category,difficulty_level,example_sentence_korean,example_sentence_english\n"

func TestImportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.csv")
	content := header +
		"사과,sagwa,apple,noun,food,1,사과를 먹어요,I eat an apple\n" +
		"물,mul,water,noun,food,9,,\n" +
		",,missing korean,,,,,\n" +
		"\n" +
		"학교,hakgyo,school\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	store := newStore()
	res, err := Import(context.Background(), store, Options{FilePath: path})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalProcessed)
	assert.Equal(t, 3, res.Created)
	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, res.Errors)

	apple := store.items["사과|apple"]
	assert.Equal(t, "food", apple.Category)
	assert.Equal(t, 1, apple.DifficultyLevel)
	assert.Equal(t, "I eat an apple", apple.ExampleSentenceEnglish)
	assert.Equal(t, 5, store.items["물|water"].DifficultyLevel)
	assert.Equal(t, 1, store.items["학교|school"].DifficultyLevel)

	res, err = Import(context.Background(), store, Options{FilePath: path})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 3, res.Updated)
}

func TestImportExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.xlsx")
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"korean", "romanization", "english", "part_of_speech", "category", "difficulty_level"},
		{"안녕", "annyeong", "hi", "interjection", "greetings", 1},
		{"불", "bul", "fire", "noun", "nature", 2},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	store := newStore()
	store.fail = "불"
	res, err := Import(context.Background(), store, Options{FilePath: path})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalProcessed)
	assert.Equal(t, 1, res.Created)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Row 3")
	assert.Equal(t, "greetings", store.items["안녕|hi"].Category)
}

func TestImportRejectsUnknownExtension(t *testing.T) {
	_, err := Import(context.Background(), newStore(), Options{FilePath: "words.json"})
	assert.Error(t, err)
}
