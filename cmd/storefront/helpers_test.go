package main

import (
	"strconv"

	profiledom "storefront/internal/domain/profile"
)

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

func profiledomFixture() profiledom.Profile {
	return profiledom.Profile{
		Username:  "Ann",
		FullName:  "Ann Smith",
		BirthDate: "1990-01-02",
		City:      "Bergen",
		Street:    "Main 1",
		PostCode:  "5003",
	}
}
