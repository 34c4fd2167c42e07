package mood

// lexicon is an AFINN-style word valence table. The set is intentionally
// small: it only needs to separate clearly happy and clearly sad messages,
// everything else lands on neutral.
var lexicon = map[string]int{
	// positive
	"amazing":   4,
	"awesome":   4,
	"fantastic": 4,
	"wonderful": 4,
	"excellent": 3,
	"great":     3,
	"happy":     3,
	"love":      3,
	"loved":     3,
	"loving":    3,
	"thrilled":  3,
	"delighted": 3,
	"excited":   3,
	"joy":       3,
	"best":      3,
	"beautiful": 3,
	"fun":       2,
	"glad":      2,
	"good":      2,
	"nice":      2,
	"cool":      2,
	"better":    2,
	"win":       2,
	"won":       2,
	"thanks":    2,
	"thank":     2,
	"hope":      2,
	"hopeful":   2,
	"proud":     2,
	"relieved":  2,
	"smile":     2,
	"yay":       2,
	"ok":        1,
	"okay":      1,
	"fine":      1,
	"calm":      1,

	// negative
	"awful":       -3,
	"terrible":    -3,
	"horrible":    -3,
	"miserable":   -3,
	"depressed":   -3,
	"devastated":  -3,
	"hate":        -3,
	"hated":       -3,
	"worst":       -3,
	"heartbroken": -3,
	"hopeless":    -3,
	"crying":      -2,
	"cried":       -2,
	"cry":         -2,
	"sad":         -2,
	"lonely":      -2,
	"alone":       -2,
	"anxious":     -2,
	"anxiety":     -2,
	"scared":      -2,
	"afraid":      -2,
	"angry":       -2,
	"mad":         -2,
	"hurt":        -2,
	"hurts":       -2,
	"pain":        -2,
	"lost":        -2,
	"failed":      -2,
	"failure":     -2,
	"broke":       -2,
	"sick":        -2,
	"stressed":    -2,
	"tired":       -1,
	"worried":     -1,
	"bad":         -1,
	"upset":       -1,
	"bored":       -1,
	"meh":         -1,
}
