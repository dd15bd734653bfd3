package cli

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/galaxyfield/aimcore/collision"
)

// BoxesAction prints the collision boxes a scene registers, as the engine stores them. Node
// boxes are listed cluster by cluster, the way they are registered while that cluster is active.
func BoxesAction(c *cli.Context) error {
	categories := []collision.Category{collision.Clusters, collision.Nodes, collision.Interactive}
	if name := c.String(flagCategory); name != "" {
		category, err := collision.CategoryFromString(name)
		if err != nil {
			return err
		}
		categories = []collision.Category{category}
	}

	conf, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := newLogger(c, conf)
	graph, sc, err := loadScene(c, conf)
	if err != nil {
		return err
	}
	registry, err := collision.NewRegistry(collision.RegistryOptions{
		MinBoxSize:  conf.MinBoxSize,
		DeepCompare: conf.Registry.DeepCompare,
	}, logger.Sublogger("registry"))
	if err != nil {
		return err
	}
	if err := sc.Register(registry); err != nil {
		return err
	}

	w := c.App.Writer
	for _, category := range categories {
		if category != collision.Nodes {
			if err := printBoxes(w, category, "", registry.Collection(category)); err != nil {
				return err
			}
			continue
		}
		for _, cl := range graph.Clusters {
			if _, err := registry.RegisterCollection(collision.Nodes, sc.NodeBoxes(cl.ID)); err != nil {
				return err
			}
			if err := printBoxes(w, category, cl.ID, registry.Collection(collision.Nodes)); err != nil {
				return err
			}
		}
	}
	return nil
}

func printBoxes(w io.Writer, category collision.Category, cluster string, col *collision.Collection) error {
	prefix := category.String()
	if cluster != "" {
		prefix += "[" + cluster + "]"
	}
	var err error
	col.Each(func(b collision.Box) bool {
		center, size := b.Center(), b.Size()
		_, err = fmt.Fprintf(w, "%s\t%s\tcenter=(%g, %g, %g)\tsize=(%g, %g, %g)\tlayer=%s\n",
			prefix, b.ID, center.X, center.Y, center.Z, size.X, size.Y, size.Z, collision.Mask(b.Layer))
		return err == nil
	})
	return err
}
