// Provides the directory layout conventions for a build.
//
// Default paths are resolved relative to the project root, which is derived
// from the location of the isobuild binary. The settings file additionally
// follows XDG conventions on Linux and platform-native conventions on macOS
// and Windows, with "isobuild" as the subdirectory under each base path.
package paths
