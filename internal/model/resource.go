package model

// Kind names one of the mirrored upstream collections.  The value doubles
// as the upstream path segment, the local table name and the public
// /v1/:resource segment.
type Kind string

const (
	KindFilms     Kind = "films"
	KindPeople    Kind = "people"
	KindPlanets   Kind = "planets"
	KindSpecies   Kind = "species"
	KindStarships Kind = "starships"
	KindVehicles  Kind = "vehicles"
)

// Kinds lists every supported kind in sync order.
var Kinds = []Kind{KindFilms, KindPeople, KindPlanets, KindSpecies, KindStarships, KindVehicles}

var columns = map[Kind][]string{
	KindFilms: {"external_id", "title", "episode_id", "opening_crawl", "director", "producer", "release_date"},
	KindPeople: {"external_id", "name", "height", "mass", "hair_color", "skin_color", "eye_color",
		"birth_year", "gender"},
	KindPlanets: {"external_id", "name", "climate", "diameter", "gravity", "population", "terrain",
		"orbital_period", "rotation_period", "surface_water"},
	KindSpecies: {"external_id", "name", "classification", "designation", "average_height",
		"average_lifespan", "eye_colors", "hair_colors", "skin_colors", "language"},
	KindStarships: {"external_id", "name", "model", "starship_class", "manufacturer", "cost_in_credits",
		"length", "crew", "passengers", "max_atmosphering_speed", "hyperdrive_rating", "mglt",
		"cargo_capacity", "consumables"},
	KindVehicles: {"external_id", "name", "model", "vehicle_class", "manufacturer", "cost_in_credits",
		"length", "crew", "passengers", "max_atmosphering_speed", "cargo_capacity", "consumables"},
}

// ParseKind validates s against the fixed set of kinds.
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	_, ok := columns[k]
	return k, ok
}

// Table is the local table holding rows of this kind.
func (k Kind) Table() string { return string(k) }

// Columns returns the stored columns after the local id, external_id first.
// The order matches Row.Values.
func (k Kind) Columns() []string { return columns[k] }

// NewRow returns an empty row of this kind, ready to be scanned into.
func (k Kind) NewRow() Row {
	switch k {
	case KindFilms:
		return &Film{}
	case KindPeople:
		return &Person{}
	case KindPlanets:
		return &Planet{}
	case KindSpecies:
		return &Species{}
	case KindStarships:
		return &Starship{}
	case KindVehicles:
		return &Vehicle{}
	}
	return nil
}

// Row is a local mirror row of one kind.  Rows are written wholesale by
// the synchronizer and keyed on ExternalID.
type Row interface {
	Kind() Kind
	Key() int64
	// Values returns the column values in Kind().Columns() order.
	Values() []any
	// Targets returns scan destinations for id followed by Kind().Columns().
	Targets() []any
	// LocalID and SetID read and assign the local id.
	LocalID() int64
	SetID(id int64)
}

type Film struct {
	ID           int64  `json:"id"`
	ExternalID   int64  `json:"external_id"`
	Title        string `json:"title"`
	EpisodeID    int    `json:"episode_id"`
	OpeningCrawl string `json:"opening_crawl"`
	Director     string `json:"director"`
	Producer     string `json:"producer"`
	ReleaseDate  string `json:"release_date"`
}

func (f *Film) Kind() Kind { return KindFilms }
func (f *Film) Key() int64 { return f.ExternalID }
func (f *Film) LocalID() int64 { return f.ID }
func (f *Film) SetID(id int64) { f.ID = id }
func (f *Film) Values() []any {
	return []any{f.ExternalID, f.Title, f.EpisodeID, f.OpeningCrawl, f.Director, f.Producer, f.ReleaseDate}
}
func (f *Film) Targets() []any {
	return []any{&f.ID, &f.ExternalID, &f.Title, &f.EpisodeID, &f.OpeningCrawl, &f.Director, &f.Producer, &f.ReleaseDate}
}

type Person struct {
	ID         int64  `json:"id"`
	ExternalID int64  `json:"external_id"`
	Name       string `json:"name"`
	Height     string `json:"height"`
	Mass       string `json:"mass"`
	HairColor  string `json:"hair_color"`
	SkinColor  string `json:"skin_color"`
	EyeColor   string `json:"eye_color"`
	BirthYear  string `json:"birth_year"`
	Gender     string `json:"gender"`
}

func (p *Person) Kind() Kind { return KindPeople }
func (p *Person) Key() int64 { return p.ExternalID }
func (p *Person) LocalID() int64 { return p.ID }
func (p *Person) SetID(id int64) { p.ID = id }
func (p *Person) Values() []any {
	return []any{p.ExternalID, p.Name, p.Height, p.Mass, p.HairColor, p.SkinColor, p.EyeColor, p.BirthYear, p.Gender}
}
func (p *Person) Targets() []any {
	return []any{&p.ID, &p.ExternalID, &p.Name, &p.Height, &p.Mass, &p.HairColor, &p.SkinColor, &p.EyeColor,
		&p.BirthYear, &p.Gender}
}

type Planet struct {
	ID             int64  `json:"id"`
	ExternalID     int64  `json:"external_id"`
	Name           string `json:"name"`
	Climate        string `json:"climate"`
	Diameter       string `json:"diameter"`
	Gravity        string `json:"gravity"`
	Population     string `json:"population"`
	Terrain        string `json:"terrain"`
	OrbitalPeriod  string `json:"orbital_period"`
	RotationPeriod string `json:"rotation_period"`
	SurfaceWater   string `json:"surface_water"`
}

func (p *Planet) Kind() Kind { return KindPlanets }
func (p *Planet) Key() int64 { return p.ExternalID }
func (p *Planet) LocalID() int64 { return p.ID }
func (p *Planet) SetID(id int64) { p.ID = id }
func (p *Planet) Values() []any {
	return []any{p.ExternalID, p.Name, p.Climate, p.Diameter, p.Gravity, p.Population, p.Terrain,
		p.OrbitalPeriod, p.RotationPeriod, p.SurfaceWater}
}
func (p *Planet) Targets() []any {
	return []any{&p.ID, &p.ExternalID, &p.Name, &p.Climate, &p.Diameter, &p.Gravity, &p.Population, &p.Terrain,
		&p.OrbitalPeriod, &p.RotationPeriod, &p.SurfaceWater}
}

type Species struct {
	ID              int64  `json:"id"`
	ExternalID      int64  `json:"external_id"`
	Name            string `json:"name"`
	Classification  string `json:"classification"`
	Designation     string `json:"designation"`
	AverageHeight   string `json:"average_height"`
	AverageLifespan string `json:"average_lifespan"`
	EyeColors       string `json:"eye_colors"`
	HairColors      string `json:"hair_colors"`
	SkinColors      string `json:"skin_colors"`
	Language        string `json:"language"`
}

func (s *Species) Kind() Kind { return KindSpecies }
func (s *Species) Key() int64 { return s.ExternalID }
func (s *Species) LocalID() int64 { return s.ID }
func (s *Species) SetID(id int64) { s.ID = id }
func (s *Species) Values() []any {
	return []any{s.ExternalID, s.Name, s.Classification, s.Designation, s.AverageHeight, s.AverageLifespan,
		s.EyeColors, s.HairColors, s.SkinColors, s.Language}
}
func (s *Species) Targets() []any {
	return []any{&s.ID, &s.ExternalID, &s.Name, &s.Classification, &s.Designation, &s.AverageHeight,
		&s.AverageLifespan, &s.EyeColors, &s.HairColors, &s.SkinColors, &s.Language}
}

type Starship struct {
	ID                   int64  `json:"id"`
	ExternalID           int64  `json:"external_id"`
	Name                 string `json:"name"`
	Model                string `json:"model"`
	StarshipClass        string `json:"starship_class"`
	Manufacturer         string `json:"manufacturer"`
	CostInCredits        string `json:"cost_in_credits"`
	Length               string `json:"length"`
	Crew                 string `json:"crew"`
	Passengers           string `json:"passengers"`
	MaxAtmospheringSpeed string `json:"max_atmosphering_speed"`
	HyperdriveRating     string `json:"hyperdrive_rating"`
	MGLT                 string `json:"mglt"`
	CargoCapacity        string `json:"cargo_capacity"`
	Consumables          string `json:"consumables"`
}

func (s *Starship) Kind() Kind { return KindStarships }
func (s *Starship) Key() int64 { return s.ExternalID }
func (s *Starship) LocalID() int64 { return s.ID }
func (s *Starship) SetID(id int64) { s.ID = id }
func (s *Starship) Values() []any {
	return []any{s.ExternalID, s.Name, s.Model, s.StarshipClass, s.Manufacturer, s.CostInCredits, s.Length,
		s.Crew, s.Passengers, s.MaxAtmospheringSpeed, s.HyperdriveRating, s.MGLT, s.CargoCapacity, s.Consumables}
}
func (s *Starship) Targets() []any {
	return []any{&s.ID, &s.ExternalID, &s.Name, &s.Model, &s.StarshipClass, &s.Manufacturer, &s.CostInCredits,
		&s.Length, &s.Crew, &s.Passengers, &s.MaxAtmospheringSpeed, &s.HyperdriveRating, &s.MGLT,
		&s.CargoCapacity, &s.Consumables}
}

type Vehicle struct {
	ID                   int64  `json:"id"`
	ExternalID           int64  `json:"external_id"`
	Name                 string `json:"name"`
	Model                string `json:"model"`
	VehicleClass         string `json:"vehicle_class"`
	Manufacturer         string `json:"manufacturer"`
	CostInCredits        string `json:"cost_in_credits"`
	Length               string `json:"length"`
	Crew                 string `json:"crew"`
	Passengers           string `json:"passengers"`
	MaxAtmospheringSpeed string `json:"max_atmosphering_speed"`
	CargoCapacity        string `json:"cargo_capacity"`
	Consumables          string `json:"consumables"`
}

func (v *Vehicle) Kind() Kind { return KindVehicles }
func (v *Vehicle) Key() int64 { return v.ExternalID }
func (v *Vehicle) LocalID() int64 { return v.ID }
func (v *Vehicle) SetID(id int64) { v.ID = id }
func (v *Vehicle) Values() []any {
	return []any{v.ExternalID, v.Name, v.Model, v.VehicleClass, v.Manufacturer, v.CostInCredits, v.Length,
		v.Crew, v.Passengers, v.MaxAtmospheringSpeed, v.CargoCapacity, v.Consumables}
}
func (v *Vehicle) Targets() []any {
	return []any{&v.ID, &v.ExternalID, &v.Name, &v.Model, &v.VehicleClass, &v.Manufacturer, &v.CostInCredits,
		&v.Length, &v.Crew, &v.Passengers, &v.MaxAtmospheringSpeed, &v.CargoCapacity, &v.Consumables}
}
