package ports

import "github.com/gin-gonic/gin"

type HTTPHandler interface {
	StartExperiment(c *gin.Context)
	GetScenario(c *gin.Context)
	ListPermutations(c *gin.Context)
	GetActiveExperiment(c *gin.Context)
	FinishExperiment(c *gin.Context)
}
