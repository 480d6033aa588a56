package emotion

// Label identifies one of the seven emotion classes.
type Label string

// The fixed FER-2013 label set. Order matters: argmax ties resolve to the
// label that appears first in this sequence.
const (
	Angry    Label = "Angry"
	Disgust  Label = "Disgust"
	Fear     Label = "Fear"
	Happy    Label = "Happy"
	Sad      Label = "Sad"
	Surprise Label = "Surprise"
	Neutral  Label = "Neutral"
)

// LabelCount is the size of the fixed label set.
const LabelCount = 7

// Labels returns the fixed label order. The returned slice is a copy.
func Labels() []Label {
	return []Label{Angry, Disgust, Fear, Happy, Sad, Surprise, Neutral}
}

var labelIndex = map[Label]int{
	Angry:    0,
	Disgust:  1,
	Fear:     2,
	Happy:    3,
	Sad:      4,
	Surprise: 5,
	Neutral:  6,
}

// Index returns the position of the label in the fixed order, or -1 when the
// label is not part of the set.
func (l Label) Index() int {
	if idx, ok := labelIndex[l]; ok {
		return idx
	}
	return -1
}

// Valid reports whether the label belongs to the fixed set.
func (l Label) Valid() bool {
	_, ok := labelIndex[l]
	return ok
}
