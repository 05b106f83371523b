package domain

// Table is a mongo collection name
type Table string

const (
	TableListings          Table = "listings"
	TableActivityHistories Table = "activity_histories"
)
