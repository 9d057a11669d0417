// Package storetest holds a fixture dataset and a behavioral test suite that
// every store.Store implementation runs.
package storetest

import "github.com/teranos/actorgraph/models"

// Fixture ids are valid ObjectID hex so the same dataset loads into Mongo
const (
	Zac     = "5f0000000000000000000001"
	Zendaya = "5f0000000000000000000002"
	Hugh    = "5f0000000000000000000003"
	Emma    = "5f0000000000000000000004"
	Loner   = "5f0000000000000000000005"

	Greatest   = "6f0000000000000000000001" // 2017: Zac, Zendaya, Hugh
	Spiderman  = "6f0000000000000000000002" // 2017: Zendaya
	Baywatch   = "6f0000000000000000000003" // 2017: Zac
	LaLa       = "6f0000000000000000000004" // 2016: Emma
	Prestige   = "6f0000000000000000000005" // 2006: Hugh, Emma
	Hairspray  = "6f0000000000000000000006" // 2007: Zac
	Solo       = "6f0000000000000000000007" // 1995: Loner
	UnknownHex = "7f0000000000000000000099"
)

// Dataset returns a small co-starring network
func Dataset() models.Dataset {
	return models.Dataset{
		Actors: []models.Actor{
			{ID: Zac, Name: "Zac Efron", Birth: 1987, Movies: []string{Hairspray, Greatest, Baywatch}, TotalRevenue: 900e6, TotalRating: 19.6},
			{ID: Zendaya, Name: "Zendaya", Birth: 1996, Movies: []string{Greatest, Spiderman}, TotalRevenue: 1.3e9, TotalRating: 14.9},
			{ID: Hugh, Name: "Hugh Jackman", Birth: 1968, Movies: []string{Prestige, Greatest}, TotalRevenue: 544e6, TotalRating: 15.6},
			{ID: Emma, Name: "Emma Stone", Birth: 1988, Movies: []string{Prestige, LaLa}, TotalRevenue: 555e6, TotalRating: 16.0},
			{ID: Loner, Name: "Lone_Actor 100%", Birth: 1950, Death: 2010, Movies: []string{Solo}, TotalRevenue: 1e6, TotalRating: 5},
		},
		Movies: []models.Movie{
			{ID: Greatest, Title: "The Greatest Showman", Year: 2017, Month: 12, Day: 20, Revenue: 435e6, VoteAverage: 7.6, Actors: []string{Hugh, Zac, Zendaya}},
			{ID: Spiderman, Title: "Spider-Man: Homecoming", Year: 2017, Month: 7, Day: 5, Revenue: 880e6, VoteAverage: 7.3, Actors: []string{Zendaya}},
			{ID: Baywatch, Title: "Baywatch", Year: 2017, Month: 5, Day: 25, Revenue: 177e6, VoteAverage: 5.6, Actors: []string{Zac}},
			{ID: LaLa, Title: "La La Land", Year: 2016, Month: 11, Day: 29, Revenue: 446e6, VoteAverage: 7.9, Actors: []string{Emma}},
			{ID: Prestige, Title: "The Prestige", Year: 2006, Month: 10, Day: 19, Revenue: 109e6, VoteAverage: 8.0, Actors: []string{Hugh, Emma}},
			{ID: Hairspray, Title: "Hairspray", Year: 2007, Month: 7, Day: 13, Revenue: 202e6, VoteAverage: 6.4, Actors: []string{Zac}},
			{ID: Solo, Title: "Solo Picture", Year: 1995, Revenue: 1e6, VoteAverage: 5, Actors: []string{Loner}},
		},
	}
}
