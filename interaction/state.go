package interaction

// State is the hover/active selection the renderer reads every frame. Empty ids mean nothing is
// selected in that field. ActiveNodeID is only set while ActiveClusterID is.
type State struct {
	HoveredClusterID    string `json:"hovered_cluster_id,omitempty"`
	ActiveClusterID     string `json:"active_cluster_id,omitempty"`
	ActiveNodeID        string `json:"active_node_id,omitempty"`
	ActiveInteractiveID string `json:"active_interactive_id,omitempty"`
}

// IsZero reports whether nothing is hovered or active.
func (s State) IsZero() bool {
	return s == State{}
}

// StateOf projects the cluster, node and interactive machines onto a State.
func StateOf(clusters, nodes, interactive *Machine) State {
	var s State
	switch clusters.Phase() {
	case Hovered:
		s.HoveredClusterID = clusters.ID()
	case Active:
		s.ActiveClusterID = clusters.ID()
		if nodes.Phase() == Active {
			s.ActiveNodeID = nodes.ID()
		}
	case Idle:
	}
	if interactive.Phase() == Active {
		s.ActiveInteractiveID = interactive.ID()
	}
	return s
}
