package clustering

import (
	"fmt"
	"time"

	"github.com/neko-san1432/citizenlink-insights-go/internal/models"
	"github.com/neko-san1432/citizenlink-insights-go/internal/spatial"
)

// Record is the clustering view of a complaint
type Record struct {
	ID          string
	Lat         float64
	Lng         float64
	Type        string
	SubmittedAt time.Time
}

// Cluster is one density-based group of records
type Cluster struct {
	Name             string
	Center           spatial.Point
	RadiusKm         float64 // max member-to-center distance
	Members          []Record
	PatternType      string
	DominantCategory string
	FirstReportedAt  time.Time
	Status           string
}

// MemberIDs returns member ids in cluster order
func (c *Cluster) MemberIDs() []string {
	ids := make([]string, len(c.Members))
	for i, m := range c.Members {
		ids[i] = m.ID
	}
	return ids
}

// RecordsFromComplaints keeps complaints with valid coordinates
func RecordsFromComplaints(complaints []models.Complaint) []Record {
	records := make([]Record, 0, len(complaints))
	for i := range complaints {
		lat, lng, ok := complaints[i].Coordinates()
		if !ok || !spatial.ValidCoordinates(lat, lng) {
			continue
		}
		records = append(records, Record{
			ID:          complaints[i].ID,
			Lat:         lat,
			Lng:         lng,
			Type:        complaints[i].Type,
			SubmittedAt: complaints[i].SubmittedAt,
		})
	}
	return records
}

// DBSCAN groups records that are density-reachable within radiusKm.
// Records with fewer than minPoints neighbours that are not reachable from a
// core record are noise and do not appear in the output.
func DBSCAN(records []Record, radiusKm float64, minPoints int) []Cluster {
	if len(records) == 0 || len(records) < minPoints {
		return nil
	}

	visited := make(map[string]bool, len(records))
	clustered := make(map[string]bool, len(records))

	var groups [][]Record
	for i := range records {
		r := records[i]
		if visited[r.ID] {
			continue
		}
		visited[r.ID] = true

		neighbors := regionQuery(records, i, radiusKm)
		if len(neighbors) < minPoints {
			continue
		}

		members := []Record{r}
		clustered[r.ID] = true

		// neighbors grows while it is walked
		for k := 0; k < len(neighbors); k++ {
			n := records[neighbors[k]]
			if !visited[n.ID] {
				visited[n.ID] = true
				nn := regionQuery(records, neighbors[k], radiusKm)
				if len(nn) >= minPoints {
					neighbors = append(neighbors, nn...)
				}
			}
			if !clustered[n.ID] {
				members = append(members, n)
				clustered[n.ID] = true
			}
		}

		// border records already taken by an earlier cluster can leave a
		// seed short of minPoints
		if len(members) < minPoints {
			continue
		}
		groups = append(groups, members)
	}

	clusters := make([]Cluster, 0, len(groups))
	for i, members := range groups {
		clusters = append(clusters, buildCluster(i, members))
	}
	return clusters
}

// regionQuery returns indexes of every other record within radiusKm of records[idx]
func regionQuery(records []Record, idx int, radiusKm float64) []int {
	origin := records[idx]
	var out []int
	for j := range records {
		if records[j].ID == origin.ID {
			continue
		}
		if spatial.HaversineDistanceKm(origin.Lat, origin.Lng, records[j].Lat, records[j].Lng) <= radiusKm {
			out = append(out, j)
		}
	}
	return out
}

func buildCluster(index int, members []Record) Cluster {
	points := make([]spatial.Point, len(members))
	first := members[0].SubmittedAt
	for i, m := range members {
		points[i] = spatial.Point{Lat: m.Lat, Lon: m.Lng}
		if m.SubmittedAt.Before(first) {
			first = m.SubmittedAt
		}
	}

	center := spatial.Centroid(points)

	category := members[0].Type
	if category == "" {
		category = "unknown"
	}

	return Cluster{
		Name:             fmt.Sprintf("Cluster %d - %s", index+1, category),
		Center:           center,
		RadiusKm:         spatial.MaxDistanceKm(center, points),
		Members:          members,
		PatternType:      DetectPatternType(members),
		DominantCategory: category,
		FirstReportedAt:  first,
		Status:           models.ClusterStatusActive,
	}
}

// ToModel converts a cluster into its persisted form. Radius is stored in meters.
func (c *Cluster) ToModel(id, generationID string) models.ComplaintCluster {
	return models.ComplaintCluster{
		ID:               id,
		GenerationID:     generationID,
		ClusterName:      c.Name,
		CenterLat:        c.Center.Lat,
		CenterLng:        c.Center.Lon,
		RadiusMeters:     c.RadiusKm * 1000,
		ComplaintIDs:     c.MemberIDs(),
		PatternType:      c.PatternType,
		DominantCategory: c.DominantCategory,
		FirstReportedAt:  c.FirstReportedAt,
		Status:           c.Status,
	}
}

// Clusterer groups records into density clusters
type Clusterer interface {
	Cluster(records []Record, params Params) ([]Cluster, error)
}

// DBSCANClusterer validates params and runs DBSCAN
type DBSCANClusterer struct{}

var _ Clusterer = DBSCANClusterer{}

// Cluster implements Clusterer
func (DBSCANClusterer) Cluster(records []Record, params Params) ([]Cluster, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return DBSCAN(records, params.RadiusKm, params.MinPoints), nil
}
