package placeholder

import "strconv"

//Default default placeholder
const Default = "?"

//Generator represents placeholder generator
type Generator interface {
	Resolver() func() string
}

//DefaultGenerator represents generator of the Default placeholder
type DefaultGenerator struct{}

//Resolver returns function that returns Default placeholder
func (p *DefaultGenerator) Resolver() func() string {
	return func() string {
		return Default
	}
}

//Constant represents generator of the same placeholder
type Constant struct {
	Placeholder string
}

//Resolver returns function that returns constant placeholder
func (p *Constant) Resolver() func() string {
	return func() string {
		return p.Placeholder
	}
}

//Sequence represents generator of numbered placeholders, i.e. $1, $2 for postgres
type Sequence struct {
	Prefix string
}

//Resolver returns function that returns next numbered placeholder
func (p *Sequence) Resolver() func() string {
	counter := 0
	return func() string {
		counter++
		return p.Prefix + strconv.Itoa(counter)
	}
}
