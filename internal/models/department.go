package models

// Department - городской департамент, работающий с инцидентами
type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	// LoginKey никогда не отдается наружу
	LoginKey string `json:"-"`
}
