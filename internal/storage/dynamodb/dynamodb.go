// Package dynamodb stores records in two DynamoDB tables: transactions keyed
// by id with a userId index, and users keyed by uid with an email index.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"fintrack/internal/core"
)

const (
	UserIndex  = "userId-index"
	EmailIndex = "email-index"
)

// API is the subset of the DynamoDB client used by Store.
type API interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

type Config struct {
	Region            string
	Endpoint          string // local DynamoDB, empty for AWS
	TransactionsTable string
	UsersTable        string
	CreateTables      bool
}

type Store struct {
	api       API
	txTable   string
	userTable string
}

// Connect builds a client from the default AWS credential chain.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	s := New(client, cfg.TransactionsTable, cfg.UsersTable)
	if cfg.CreateTables {
		if err := s.EnsureTables(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func New(api API, txTable, userTable string) *Store {
	if txTable == "" {
		txTable = "Transactions"
	}
	if userTable == "" {
		userTable = "Users"
	}
	return &Store{api: api, txTable: txTable, userTable: userTable}
}

func (s *Store) Close() error { return nil }

// Ping checks that both tables exist.
func (s *Store) Ping(ctx context.Context) error {
	for _, table := range []string{s.txTable, s.userTable} {
		if _, err := s.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)}); err != nil {
			return fmt.Errorf("describe table %s: %w", table, err)
		}
	}
	return nil
}

// EnsureTables creates missing tables with on-demand billing.
func (s *Store) EnsureTables(ctx context.Context) error {
	specs := []struct {
		table, key, indexName, indexKey string
	}{
		{s.txTable, "id", UserIndex, "userId"},
		{s.userTable, "uid", EmailIndex, "email"},
	}
	for _, spec := range specs {
		_, err := s.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(spec.table)})
		if err == nil {
			continue
		}
		var notFound *types.ResourceNotFoundException
		if !errors.As(err, &notFound) {
			return fmt.Errorf("describe table %s: %w", spec.table, err)
		}
		_, err = s.api.CreateTable(ctx, &dynamodb.CreateTableInput{
			TableName:   aws.String(spec.table),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String(spec.key), AttributeType: types.ScalarAttributeTypeS},
				{AttributeName: aws.String(spec.indexKey), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(spec.key), KeyType: types.KeyTypeHash},
			},
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{{
				IndexName:  aws.String(spec.indexName),
				KeySchema:  []types.KeySchemaElement{{AttributeName: aws.String(spec.indexKey), KeyType: types.KeyTypeHash}},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			}},
		})
		if err != nil {
			return fmt.Errorf("create table %s: %w", spec.table, err)
		}
	}
	return nil
}

func key(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{name: &types.AttributeValueMemberS{Value: value}}
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func (s *Store) queryIndex(ctx context.Context, table, index, attr, value string) ([]map[string]types.AttributeValue, error) {
	in := &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#k = :v"),
		ExpressionAttributeNames:  map[string]string{"#k": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
	}
	var items []map[string]types.AttributeValue
	for {
		out, err := s.api.Query(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", index, err)
		}
		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func (s *Store) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	items, err := s.queryIndex(ctx, s.txTable, UserIndex, "userId", userID)
	if err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(items))
	for _, item := range items {
		var t core.Transaction
		if err := attributevalue.UnmarshalMap(item, &t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
		}
		out = append(out, t)
	}
	// Index queries have no defined order without a range key.
	slices.SortStableFunc(out, func(a, b core.Transaction) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.txTable),
		Key:            key("id", id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("GetItem operation failed: %w", err)
	}
	if len(out.Item) == 0 {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	var t core.Transaction
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return core.Transaction{}, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}
	return t, nil
}

func (s *Store) putTransaction(ctx context.Context, t core.Transaction, condition string) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}
	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.txTable),
		Item:                item,
		ConditionExpression: aws.String(condition),
	})
	return err
}

func (s *Store) CreateTransaction(ctx context.Context, t core.Transaction) error {
	err := s.putTransaction(ctx, t, "attribute_not_exists(id)")
	if isConditionFailed(err) {
		return fmt.Errorf("transaction %s: %w", t.ID, core.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("PutItem operation failed: %w", err)
	}
	return nil
}

func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	err := s.putTransaction(ctx, t, "attribute_exists(id)")
	if isConditionFailed(err) {
		return fmt.Errorf("transaction %s: %w", t.ID, core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("PutItem operation failed: %w", err)
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	_, err := s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.txTable),
		Key:                 key("id", id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("DeleteItem operation failed: %w", err)
	}
	return nil
}

// CreateUser checks the email index before writing. Two concurrent
// registrations of the same address can both pass the check.
func (s *Store) CreateUser(ctx context.Context, u core.User) error {
	u.Email = core.NormalizeEmail(u.Email)
	if _, err := s.GetUserByEmail(ctx, u.Email); err == nil {
		return fmt.Errorf("user %s: %w", u.Email, core.ErrConflict)
	} else if !errors.Is(err, core.ErrNotFound) {
		return err
	}
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.userTable),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(uid)"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("user %s: %w", u.UID, core.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("PutItem operation failed: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, uid string) (core.User, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.userTable),
		Key:       key("uid", uid),
	})
	if err != nil {
		return core.User{}, fmt.Errorf("GetItem operation failed: %w", err)
	}
	if len(out.Item) == 0 {
		return core.User{}, fmt.Errorf("user %s: %w", uid, core.ErrNotFound)
	}
	var u core.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return core.User{}, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	email = core.NormalizeEmail(email)
	items, err := s.queryIndex(ctx, s.userTable, EmailIndex, "email", email)
	if err != nil {
		return core.User{}, err
	}
	if len(items) == 0 {
		return core.User{}, fmt.Errorf("user %s: %w", email, core.ErrNotFound)
	}
	var u core.User
	if err := attributevalue.UnmarshalMap(items[0], &u); err != nil {
		return core.User{}, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return u, nil
}
