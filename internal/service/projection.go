package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/iliyamo/swapi-mirror/internal/model"
)

// Upstream item shapes.  Only the fields that are mirrored are declared;
// everything else in the payload is dropped by the decoder.

type upstreamFilm struct {
	Title        string `json:"title"`
	EpisodeID    int    `json:"episode_id"`
	OpeningCrawl string `json:"opening_crawl"`
	Director     string `json:"director"`
	Producer     string `json:"producer"`
	ReleaseDate  string `json:"release_date"`
	URL          string `json:"url"`
}

type upstreamPerson struct {
	Name      string `json:"name"`
	Height    string `json:"height"`
	Mass      string `json:"mass"`
	HairColor string `json:"hair_color"`
	SkinColor string `json:"skin_color"`
	EyeColor  string `json:"eye_color"`
	BirthYear string `json:"birth_year"`
	Gender    string `json:"gender"`
	URL       string `json:"url"`
}

type upstreamPlanet struct {
	Name           string `json:"name"`
	Climate        string `json:"climate"`
	Diameter       string `json:"diameter"`
	Gravity        string `json:"gravity"`
	Population     string `json:"population"`
	Terrain        string `json:"terrain"`
	OrbitalPeriod  string `json:"orbital_period"`
	RotationPeriod string `json:"rotation_period"`
	SurfaceWater   string `json:"surface_water"`
	URL            string `json:"url"`
}

type upstreamSpecies struct {
	Name            string `json:"name"`
	Classification  string `json:"classification"`
	Designation     string `json:"designation"`
	AverageHeight   string `json:"average_height"`
	AverageLifespan string `json:"average_lifespan"`
	EyeColors       string `json:"eye_colors"`
	HairColors      string `json:"hair_colors"`
	SkinColors      string `json:"skin_colors"`
	Language        string `json:"language"`
	URL             string `json:"url"`
}

type upstreamStarship struct {
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
	MGLT                 string `json:"MGLT"`
	CargoCapacity        string `json:"cargo_capacity"`
	Consumables          string `json:"consumables"`
	URL                  string `json:"url"`
}

type upstreamVehicle struct {
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
	URL                  string `json:"url"`
}

// Project decodes one upstream item of kind and maps it onto the local row
// shape, keyed by the id at the end of the item's url.
func Project(kind model.Kind, raw json.RawMessage) (model.Row, error) {
	var (
		row     model.Row
		selfURL string
	)
	switch kind {
	case model.KindFilms:
		var v upstreamFilm
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		selfURL = v.URL
		row = &model.Film{Title: v.Title, EpisodeID: v.EpisodeID, OpeningCrawl: v.OpeningCrawl,
			Director: v.Director, Producer: v.Producer, ReleaseDate: v.ReleaseDate}
	case model.KindPeople:
		var v upstreamPerson
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		selfURL = v.URL
		row = &model.Person{Name: v.Name, Height: v.Height, Mass: v.Mass, HairColor: v.HairColor,
			SkinColor: v.SkinColor, EyeColor: v.EyeColor, BirthYear: v.BirthYear, Gender: v.Gender}
	case model.KindPlanets:
		var v upstreamPlanet
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		selfURL = v.URL
		row = &model.Planet{Name: v.Name, Climate: v.Climate, Diameter: v.Diameter, Gravity: v.Gravity,
			Population: v.Population, Terrain: v.Terrain, OrbitalPeriod: v.OrbitalPeriod,
			RotationPeriod: v.RotationPeriod, SurfaceWater: v.SurfaceWater}
	case model.KindSpecies:
		var v upstreamSpecies
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		selfURL = v.URL
		row = &model.Species{Name: v.Name, Classification: v.Classification, Designation: v.Designation,
			AverageHeight: v.AverageHeight, AverageLifespan: v.AverageLifespan, EyeColors: v.EyeColors,
			HairColors: v.HairColors, SkinColors: v.SkinColors, Language: v.Language}
	case model.KindStarships:
		var v upstreamStarship
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		selfURL = v.URL
		row = &model.Starship{Name: v.Name, Model: v.Model, StarshipClass: v.StarshipClass,
			Manufacturer: v.Manufacturer, CostInCredits: v.CostInCredits, Length: v.Length, Crew: v.Crew,
			Passengers: v.Passengers, MaxAtmospheringSpeed: v.MaxAtmospheringSpeed,
			HyperdriveRating: v.HyperdriveRating, MGLT: v.MGLT, CargoCapacity: v.CargoCapacity,
			Consumables: v.Consumables}
	case model.KindVehicles:
		var v upstreamVehicle
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		selfURL = v.URL
		row = &model.Vehicle{Name: v.Name, Model: v.Model, VehicleClass: v.VehicleClass,
			Manufacturer: v.Manufacturer, CostInCredits: v.CostInCredits, Length: v.Length, Crew: v.Crew,
			Passengers: v.Passengers, MaxAtmospheringSpeed: v.MaxAtmospheringSpeed,
			CargoCapacity: v.CargoCapacity, Consumables: v.Consumables}
	default:
		return nil, ErrInvalidResource
	}

	id, err := ExternalID(selfURL)
	if err != nil {
		return nil, err
	}
	setExternalID(row, id)
	return row, nil
}

// ExternalID extracts the trailing numeric path segment of an upstream
// self url, e.g. 12 from "https://swapi.dev/api/people/12/".
func ExternalID(selfURL string) (int64, error) {
	trimmed := strings.TrimRight(selfURL, "/")
	seg := trimmed[strings.LastIndex(trimmed, "/")+1:]
	id, err := strconv.ParseInt(seg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("no numeric id in url %q", selfURL)
	}
	return id, nil
}

func setExternalID(row model.Row, id int64) {
	switch r := row.(type) {
	case *model.Film:
		r.ExternalID = id
	case *model.Person:
		r.ExternalID = id
	case *model.Planet:
		r.ExternalID = id
	case *model.Species:
		r.ExternalID = id
	case *model.Starship:
		r.ExternalID = id
	case *model.Vehicle:
		r.ExternalID = id
	}
}
