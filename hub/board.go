package hub

// SpaceKind classifies a board space.
type SpaceKind uint8

const (
	SpaceProperty SpaceKind = iota
	SpaceSpecial
	SpaceGo
	SpaceJail
	SpaceParking
	SpaceGoToJail
)

func (k SpaceKind) String() string {
	switch k {
	case SpaceProperty:
		return "property"
	case SpaceSpecial:
		return "special"
	case SpaceGo:
		return "go"
	case SpaceJail:
		return "jail"
	case SpaceParking:
		return "parking"
	case SpaceGoToJail:
		return "go-to-jail"
	}
	return "unknown"
}

type Space struct {
	Name  string
	Kind  SpaceKind
	Price int
	Rent  int
}

const (
	BoardSize        = 28
	JailPosition     = 7
	GoToJailPosition = 21
	GoSalary         = 200
)

// Board is the 28-space campus board, starting at GO and running clockwise.
var Board = [BoardSize]Space{
	{"GO", SpaceGo, 0, 0},
	{"JARVIS", SpaceProperty, 60, 20},
	{"BONNER", SpaceProperty, 60, 20},
	{"EDUROAM", SpaceSpecial, 180, 100},
	{"FURNAS", SpaceProperty, 100, 40},
	{"KNOW", SpaceProperty, 100, 40},
	{"KETTER", SpaceProperty, 120, 60},
	{"JAIL", SpaceJail, 0, 0},
	{"GOVENORS", SpaceProperty, 140, 70},
	{"HADLY", SpaceProperty, 160, 80},
	{"GRIENER", SpaceProperty, 180, 90},
	{"LOST", SpaceSpecial, 140, 100},
	{"ELLICOTT", SpaceProperty, 180, 95},
	{"FLINT", SpaceProperty, 200, 100},
	{"FREE PARKING", SpaceParking, 0, 0},
	{"NSC", SpaceProperty, 220, 105},
	{"DINNING RELOAD", SpaceSpecial, 220, 105},
	{"SILVERMAN", SpaceProperty, 240, 110},
	{"LOCKWOOD", SpaceProperty, 250, 125},
	{"SLEE", SpaceProperty, 250, 130},
	{"ACADEMIC CENTER", SpaceProperty, 280, 140},
	{"GO TO JAIL", SpaceGoToJail, 0, 0},
	{"CAPEN", SpaceProperty, 300, 150},
	{"TALBERT", SpaceProperty, 300, 150},
	{"EMON", SpaceSpecial, 180, 100},
	{"BALDY", SpaceProperty, 320, 160},
	{"DAVIS", SpaceProperty, 350, 175},
	{"COMMONS", SpaceProperty, 400, 200},
}

// Move is the outcome of advancing a token.
type Move struct {
	From, To   int
	Roll       int
	Space      Space
	PassedGo   bool
	LandedOnGo bool
	Jailed     bool
}

// Collects reports whether the move earns the GO salary.
func (m Move) Collects() bool { return m.PassedGo || m.LandedOnGo }

// Advance moves a token roll spaces from pos. Landing on GO TO JAIL sends
// the token to JAIL.
func Advance(pos, roll int) Move {
	pos = ((pos % BoardSize) + BoardSize) % BoardSize
	to := (pos + roll) % BoardSize
	m := Move{
		From:       pos,
		To:         to,
		Roll:       roll,
		PassedGo:   pos+roll >= BoardSize,
		LandedOnGo: to == 0,
	}
	if to == GoToJailPosition {
		m.To = JailPosition
		m.Jailed = true
	}
	m.Space = Board[m.To]
	return m
}
