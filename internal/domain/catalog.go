package domain

// DefaultCatalog returns the built-in Delhi zone catalog: elevation and
// drainage figures from municipal survey data, incident dates from the 2023
// monsoon season records.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Zone{
		{
			Name: "Connaught Place", Elevation: 216, DrainageScore: 3,
			Lat: 28.6315, Lon: 77.2167,
			Incidents: []string{"2023-07-22", "2023-08-10", "2023-09-15"},
		},
		{
			Name: "Karol Bagh", Elevation: 218, DrainageScore: 4,
			Lat: 28.6519, Lon: 77.1909,
			Incidents: []string{"2023-07-18", "2023-09-10"},
		},
		{
			Name: "Dwarka", Elevation: 225, DrainageScore: 8,
			Lat: 28.5921, Lon: 77.0460,
		},
		{
			Name: "Rohini", Elevation: 222, DrainageScore: 7,
			Lat: 28.7383, Lon: 77.0822,
		},
		{
			Name: "Laxmi Nagar", Elevation: 212, DrainageScore: 3,
			Lat: 28.6304, Lon: 77.2777,
			Incidents: []string{"2023-08-08", "2023-09-12"},
		},
		{
			Name: "Vasant Kunj", Elevation: 230, DrainageScore: 7,
			Lat: 28.5200, Lon: 77.1591,
		},
		{
			// Lowest elevation and weakest drainage in the catalog; floods
			// in nearly every heavy monsoon spell.
			Name: "ITO", Elevation: 210, DrainageScore: 2,
			Lat: 28.6280, Lon: 77.2410,
			Incidents: []string{"2023-07-25", "2023-08-05", "2023-09-12"},
		},
		{
			Name: "Minto Road", Elevation: 211, DrainageScore: 2,
			Lat: 28.6330, Lon: 77.2300,
			Incidents: []string{"2023-07-20", "2023-08-15"},
		},
		{
			Name: "Pusa Road", Elevation: 215, DrainageScore: 4,
			Lat: 28.6420, Lon: 77.1800,
		},
		{
			Name: "Ashram", Elevation: 213, DrainageScore: 3,
			Lat: 28.5750, Lon: 77.2590,
		},
	})
}
