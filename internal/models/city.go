package models

// City represents a city shown on the home page.
type City struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ImageURL      string `json:"imageUrl"`
	VehiclesCount int    `json:"vehiclesCount"`
}

// MockCities returns the static list of popular cities.
func MockCities() []City {
	return []City{
		{ID: "c1", Name: "Mumbai", ImageURL: "https://cdn.pixabay.com/photo/2014/07/11/23/03/gateway-of-india-390768_1280.jpg", VehiclesCount: 150},
		{ID: "c2", Name: "Chennai", ImageURL: "https://wallpaperaccess.com/full/2273827.jpg", VehiclesCount: 200},
		{ID: "c3", Name: "Bangalore", ImageURL: "https://wallpaperaccess.com/full/6999881.jpg", VehiclesCount: 180},
		{ID: "c4", Name: "Hyderabad", ImageURL: "https://wallpaperaccess.com/full/2142411.jpg", VehiclesCount: 120},
	}
}
