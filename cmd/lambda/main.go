package main

import (
	"context"
	"log"

	"pairtrade/cmd"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
)

type lambdaHandler struct {
	ginLambda *ginadapter.GinLambda
}

func (m lambdaHandler) Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return m.ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	deps, err := cmd.InitializeDependencies()
	if err != nil {
		log.Fatal(err)
	}
	defer cmd.CloseDependencies(deps)

	handler := lambdaHandler{
		ginLambda: ginadapter.New(deps.ApiHandler.InitializeRouterEngine()),
	}
	lambda.Start(handler.Handler)
}
