package structs

//ChangeCounter DB entity with per-day document change counts.
type ChangeCounter struct {
	CreatedCount int `json:"createdCount"`
	UpdatedCount int `json:"updatedCount"`
	DeletedCount int `json:"deletedCount"`
}

//Increment Increases the counter of the given change type.
func (c *ChangeCounter) Increment(changeType string) {
	switch changeType {
	case "created":
		c.CreatedCount++
	case "updated":
		c.UpdatedCount++
	case "deleted":
		c.DeletedCount++
	}
}
