package usecases

import (
	"github.com/samirrijal/seascope/internal/core/domain"
)

// Palette is the per-dataset color cycle used by the renderer.
var Palette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FECA57",
	"#FF9FF3", "#54A0FF", "#5F27CD", "#00D2D3", "#FF9F43",
	"#A55EEA", "#26DE81", "#FC427B", "#FD79A8", "#FDCB6E",
}

// BuildLayers lists transient datasets then pinned datasets, each sorted by
// id, and assigns palette colors in that order.
func BuildLayers(s domain.State) []domain.Layer {
	layers := make([]domain.Layer, 0, len(s.Transient)+len(s.Pinned))
	i := 0
	add := func(rs domain.ResultSet, pinned bool) {
		for _, id := range rs.DatasetIDs() {
			fc := rs[id]
			if fc == nil {
				continue
			}
			layers = append(layers, domain.Layer{
				DatasetID:  id,
				Pinned:     pinned,
				Color:      Palette[i%len(Palette)],
				Collection: fc,
			})
			i++
		}
	}
	add(s.Transient, false)
	add(s.Pinned, true)
	return layers
}
