// Vietmap - Historical Map Data Service for Vietnam
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vietmap

package mapper

// Candidate field names, in priority order. The backend is inconsistent
// across endpoints and deployments, so every read goes through one of these.
var (
	SiteIDKeys          = []string{"site_id", "location_id", "id"}
	SiteNameKeys        = []string{"site_name", "location_name", "name"}
	SiteTypeKeys        = []string{"site_type", "type"}
	SiteAddressKeys     = []string{"address"}
	SiteDescriptionKeys = []string{"description", "desc"}
	SiteYearKeys        = []string{"established_year", "year_established", "year"}
	SiteStatusKeys      = []string{"status"}
	SiteCityIDKeys      = []string{"city_id"}

	CityIDKeys   = []string{"city_id", "id"}
	CityNameKeys = []string{"city_name"}

	LatitudeKeys  = []string{"latitude", "lat"}
	LongitudeKeys = []string{"longitude", "lng", "lon"}
	InfoKeys      = []string{"additional_info", "info"}

	PersonIDKeys        = []string{"person_id", "id"}
	PersonNameKeys      = []string{"full_name", "person_name", "name"}
	PersonBirthKeys     = []string{"birth_year", "year_of_birth"}
	PersonDeathKeys     = []string{"death_year", "year_of_death"}
	PersonBirthplace    = []string{"birth_place", "birthplace", "place_of_birth"}
	PersonHometown      = []string{"hometown", "home_town", "que_quan"}
	PersonAddressKeys   = []string{"address"}
	PersonBiographyKeys = []string{"biography", "bio", "description"}

	EventIDKeys          = []string{"event_id", "id"}
	EventNameKeys        = []string{"event_name", "name", "title"}
	EventDateKeys        = []string{"start_date", "event_date", "date"}
	EventDescriptionKeys = []string{"description", "desc"}
	EventSiteKeys        = []string{"location_id", "site_id"}
	EventMainPersonKeys  = []string{"main_person_id", "person_id"}
	EventCityKeys        = []string{"city_id"}

	MediaIDKeys      = []string{"media_id", "id"}
	MediaURLKeys     = []string{"media_url", "url"}
	MediaTypeKeys    = []string{"media_type", "type"}
	MediaCaptionKeys = []string{"caption", "description", "title"}

	// Join tables.
	JoinEventKeys  = []string{"event_id"}
	JoinMediaKeys  = []string{"media_id"}
	JoinPersonKeys = []string{"person_id"}
)

// InfoFallbackKey holds free text that is not a JSON object.
const InfoFallbackKey = "Thông tin"
