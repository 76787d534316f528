// Package source reads category labels from a restaurant's external menu
// database.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// Collection is the external collection menu items live in.
const Collection = "menuitems"

// DefaultTimeout bounds a single refresh when Mongo.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// CategorySource returns the raw category labels an external menu uses.
type CategorySource interface {
	Categories(ctx context.Context, uri string) ([]string, error)
}

// Func adapts a function to CategorySource.
type Func func(ctx context.Context, uri string) ([]string, error)

// Categories calls f.
func (f Func) Categories(ctx context.Context, uri string) ([]string, error) {
	return f(ctx, uri)
}

// Mongo reads categories from a MongoDB database named by the URI.
type Mongo struct {
	Timeout time.Duration
}

// Categories connects to uri and returns the distinct non-blank category
// values of its menu items collection.
func (m Mongo) Categories(ctx context.Context, uri string) ([]string, error) {
	dbName, err := DatabaseName(uri)
	if err != nil {
		return nil, err
	}

	timeout := m.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to menu source: %w", err)
	}
	defer client.Disconnect(context.Background())

	values, err := client.Database(dbName).Collection(Collection).Distinct(ctx, "category", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("reading categories: %w", err)
	}

	labels := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			labels = append(labels, s)
		}
	}
	return labels, nil
}

// DatabaseName returns the default database named in a MongoDB URI.
func DatabaseName(uri string) (string, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return "", fmt.Errorf("parsing mongo uri: %w", err)
	}
	if cs.Database == "" {
		return "", errors.New("mongo uri has no database name")
	}
	return cs.Database, nil
}
