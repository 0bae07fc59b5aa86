package source

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/christophergentle/calplot/internal/series"
)

const dateKeyLayout = "2006-01-02"

// DailyValue is one stored day of a named series
type DailyValue struct {
	Series    string    `json:"series" dynamodbav:"series"` // partition key
	Date      string    `json:"date" dynamodbav:"date"`     // sort key, "2025-01-05"
	Value     float64   `json:"value" dynamodbav:"value"`
	UpdatedAt time.Time `json:"updatedAt" dynamodbav:"updatedAt"`
	TTL       int64     `json:"ttl,omitempty" dynamodbav:"ttl,omitempty"`
}

// DynamoAPI is the part of the DynamoDB client the store uses
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoStore keeps daily values keyed by series name and date
type DynamoStore struct {
	client    DynamoAPI
	tableName string
	// Retention sets the item TTL; zero keeps items forever.
	Retention time.Duration
}

// NewDynamoStore creates a store on an existing client
func NewDynamoStore(client DynamoAPI, tableName string) *DynamoStore {
	return &DynamoStore{client: client, tableName: tableName}
}

// NewDynamoStoreFromConfig creates a store using the default AWS configuration
func NewDynamoStoreFromConfig(ctx context.Context, tableName string) (*DynamoStore, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewDynamoStore(dynamodb.NewFromConfig(cfg), tableName), nil
}

// Put stores the value of one day, replacing any previous value
func (s *DynamoStore) Put(ctx context.Context, name string, day time.Time, value float64) error {
	item := DailyValue{
		Series:    name,
		Date:      day.Format(dateKeyLayout),
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	if s.Retention > 0 {
		item.TTL = item.UpdatedAt.Add(s.Retention).Unix()
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal daily value: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to store daily value: %w", err)
	}
	return nil
}

// Series reads the days of name between from and to, inclusive
func (s *DynamoStore) Series(ctx context.Context, name string, from, to time.Time) (*series.Series, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("#series = :series AND #date BETWEEN :from AND :to"),
		ExpressionAttributeNames: map[string]string{
			"#series": "series",
			"#date":   "date",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":series": &types.AttributeValueMemberS{Value: name},
			":from":   &types.AttributeValueMemberS{Value: from.Format(dateKeyLayout)},
			":to":     &types.AttributeValueMemberS{Value: to.Format(dateKeyLayout)},
		},
	}

	var points []series.Point
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query daily values: %w", err)
		}

		var items []DailyValue
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal daily values: %w", err)
		}
		for _, item := range items {
			day, err := time.Parse(dateKeyLayout, item.Date)
			if err != nil {
				log.Printf("Skipping %s item with invalid date %q", name, item.Date)
				continue
			}
			points = append(points, series.Point{Time: day, Value: item.Value})
		}
	}

	if len(points) == 0 {
		return nil, ErrNoRows
	}
	return series.New(points), nil
}
