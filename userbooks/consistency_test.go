package userbooks_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/userbooks-store-go/userbooks"
)

func Test_GetConsistencyLevel_DefaultsToStrong(t *testing.T) {
	assert.Equal(t, userbooks.StrongConsistency, userbooks.GetConsistencyLevel(context.Background()))
}

func Test_GetConsistencyLevel_ReturnsTheLevelFromTheContext(t *testing.T) {
	ctx := userbooks.WithEventualConsistency(context.Background())
	assert.Equal(t, userbooks.EventualConsistency, userbooks.GetConsistencyLevel(ctx))
	assert.Equal(t, "eventual", userbooks.GetConsistencyLevel(ctx).String())

	ctx = userbooks.WithStrongConsistency(ctx)
	assert.Equal(t, userbooks.StrongConsistency, userbooks.GetConsistencyLevel(ctx))
	assert.Equal(t, "strong", userbooks.GetConsistencyLevel(ctx).String())
}
