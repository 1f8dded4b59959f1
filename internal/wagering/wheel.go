package wagering

// Color é a cor de um pocket da roleta
type Color string

const (
	Green Color = "green"
	Red   Color = "red"
	Black Color = "black"
)

// Pockets é o número de casas da roleta europeia (0-36)
const Pockets = 37

// Pocket é uma casa da roda
type Pocket struct {
	Number int   `json:"number"`
	Color  Color `json:"color"`
}

// Wheel é a tabela fixa dos 37 pockets, indexada pelo número
var Wheel = [Pockets]Pocket{
	{0, Green},
	{1, Red}, {2, Black}, {3, Red}, {4, Black}, {5, Red}, {6, Black},
	{7, Red}, {8, Black}, {9, Red}, {10, Black}, {11, Black}, {12, Red},
	{13, Black}, {14, Red}, {15, Black}, {16, Red}, {17, Black}, {18, Red},
	{19, Red}, {20, Black}, {21, Red}, {22, Black}, {23, Red}, {24, Black},
	{25, Red}, {26, Black}, {27, Red}, {28, Black}, {29, Black}, {30, Red},
	{31, Black}, {32, Red}, {33, Black}, {34, Red}, {35, Black}, {36, Red},
}

// RouletteOutcome é o pocket sorteado numa rodada
type RouletteOutcome struct {
	Number int   `json:"number"`
	Color  Color `json:"color"`
}

// OutcomeFor monta o resultado a partir do número sorteado
func OutcomeFor(number int) RouletteOutcome {
	p := Wheel[number]
	return RouletteOutcome{Number: p.Number, Color: p.Color}
}

// Even informa a paridade; o zero não é par nem ímpar para efeito de aposta
func (o RouletteOutcome) Even() (even bool, ok bool) {
	if o.Number == 0 {
		return false, false
	}
	return o.Number%2 == 0, true
}
