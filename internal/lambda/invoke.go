package lambda

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
)

// DefaultFunctionName is the deployed name of the render function
const DefaultFunctionName = "calplot-render"

// InvokeAPI is the part of the Lambda client the invoker uses
type InvokeAPI interface {
	Invoke(ctx context.Context, params *awslambda.InvokeInput, optFns ...func(*awslambda.Options)) (*awslambda.InvokeOutput, error)
}

// Invoker triggers the render function from outside Lambda
type Invoker struct {
	client       InvokeAPI
	functionName string
}

// NewInvoker creates an invoker on an existing client
func NewInvoker(client InvokeAPI, functionName string) *Invoker {
	if functionName == "" {
		functionName = DefaultFunctionName
	}
	return &Invoker{client: client, functionName: functionName}
}

// NewInvokerFromConfig creates an invoker using the default AWS configuration
func NewInvokerFromConfig(ctx context.Context, functionName string) (*Invoker, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewInvoker(awslambda.NewFromConfig(cfg), functionName), nil
}

// Render invokes the render function synchronously and returns its response
func (i *Invoker) Render(ctx context.Context, event Event) (*Response, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal render event: %w", err)
	}

	out, err := i.client.Invoke(ctx, &awslambda.InvokeInput{
		FunctionName: aws.String(i.functionName),
		Payload:      payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", i.functionName, err)
	}
	if out.FunctionError != nil {
		return nil, fmt.Errorf("%s failed: %s: %s", i.functionName, aws.ToString(out.FunctionError), out.Payload)
	}

	var resp Response
	if err := json.Unmarshal(out.Payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", i.functionName, err)
	}

	log.Printf("Render of %s returned %d: %s", event.Series, resp.StatusCode, resp.Body)
	return &resp, nil
}
