package bwrt_test

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/basewarphq/bwrt"
)

// Env extends the base runtime environment with application variables.
type Env struct {
	bwrt.BaseEnvironment
	MainTableName string `env:"MAIN_TABLE_NAME,required"`
}

// ItemRequest is the event shape this function accepts.
type ItemRequest struct {
	ID string `json:"id"`
}

// ItemResponse is the function's success shape.
type ItemResponse struct {
	ID    string `json:"id"`
	Found bool   `json:"found"`
}

// initialize opens the AWS clients once; the returned handler owns them for
// the lifetime of the execution environment.
func initialize() (bwrt.Handler[ItemResponse], error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, err
	}
	client := dynamodb.NewFromConfig(cfg)

	return func(event []byte, ictx *bwrt.Context) (ItemResponse, error) {
		var req ItemRequest
		if err := json.Unmarshal(event, &req); err != nil {
			return ItemResponse{}, err
		}

		// The deadline is informational; long lookups should check it and
		// bail out before the platform cuts the invocation off.
		ctx := context.Background()
		if deadline := ictx.DeadlineTime(); !deadline.IsZero() {
			var cancel context.CancelFunc
			ctx, cancel = context.WithDeadline(ctx, deadline)
			defer cancel()
		}

		out, err := client.ListTables(ctx, &dynamodb.ListTablesInput{
			Limit: aws.Int32(1),
		})
		if err != nil {
			return ItemResponse{}, err
		}
		return ItemResponse{ID: req.ID, Found: len(out.TableNames) > 0}, nil
	}, nil
}

// Example demonstrates a complete function binary: a custom environment, a
// one-time initializer owning an AWS client, and the wired runtime loop.
func Example() {
	bwrt.NewApp[Env, ItemResponse](initialize).Run()
}
