package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		title    string
		entities []string
		want     string
	}{
		{"Magnitude 7.1 earthquake strikes off Japan coast", nil, CategoryNaturalDisaster},
		{"Parliament passes sweeping budget reform after marathon vote", nil, CategoryPolitics},
		{"Cholera outbreak spreads across flooded region", []string{"WHO"}, CategoryHealth},
		{"Central bank raises interest rate amid inflation fears", nil, CategoryBusiness},
		{"Airstrike hits city as ceasefire talks stall", nil, CategoryConflict},
		{"Former executive charged with fraud after trial", nil, CategoryCrime},
		{"Quiet afternoon in the village square", nil, CategoryOther},
	}
	for _, tt := range tests {
		got, _ := Classify(tt.title, tt.entities)
		assert.Equal(t, tt.want, got, "title %q", tt.title)
	}
}

func TestClassifyConfidence(t *testing.T) {
	// All hits in one category: full confidence.
	_, conf := Classify("Earthquake aftershock triggers landslide", nil)
	assert.Equal(t, 1.0, conf)

	// No hits: zero confidence.
	category, conf := Classify("Quiet afternoon in the village square", nil)
	assert.Equal(t, CategoryOther, category)
	assert.Zero(t, conf)

	// Mixed signals: confidence is the winner's share.
	_, conf = Classify("Election campaign disrupted by flood", nil)
	assert.Greater(t, conf, 0.0)
	assert.Less(t, conf, 1.0)
}

func TestClassifyDeterministicTies(t *testing.T) {
	// One politics hit, one disaster hit: politics wins by fixed order.
	first, _ := Classify("Election flood", nil)
	for i := 0; i < 10; i++ {
		got, _ := Classify("Election flood", nil)
		assert.Equal(t, first, got)
	}
	assert.Equal(t, CategoryPolitics, first)
}

func TestIsPoliticalEntity(t *testing.T) {
	assert.True(t, IsPoliticalEntity("White House"))
	assert.True(t, IsPoliticalEntity("united nations"))
	assert.False(t, IsPoliticalEntity("Mount Etna"))
}

func TestSentiment(t *testing.T) {
	assert.Equal(t, SentimentNegative, Sentiment([]string{"Dozens killed as violence escalates"}))
	assert.Equal(t, SentimentPositive, Sentiment([]string{"Survivors rescued, relief effort a success"}))
	assert.Equal(t, SentimentNeutral, Sentiment([]string{"Committee meets on Thursday"}))
	assert.Equal(t, SentimentNeutral, Sentiment(nil))
}
